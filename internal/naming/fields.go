package naming

import (
	"fmt"
	"strings"

	"bget/internal/textutil"
	"bget/internal/video"
)

// Fields are the values a template may reference.
type Fields struct {
	AID       int64
	BVID      string
	Title     string
	FullTitle string
	Up        string
	UpUID     int64
	P         int
	Parts     int
	PartName  string
	CID       int64
	Ext       string
}

// FieldsFor derives template fields for one part of item. index is 1-based;
// zero selects the first part for item-level assets.
func FieldsFor(item video.Item, index int, ext string) (Fields, error) {
	if len(item.Parts) == 0 {
		return Fields{}, fmt.Errorf("av%d has no parts", item.AID)
	}
	if index == 0 {
		index = 1
	}
	part, err := item.Part(index)
	if err != nil {
		return Fields{}, err
	}
	title := textutil.EscapeFileName(item.Title)
	partName := textutil.EscapeFileName(part.Title)
	full := title
	if item.Multipart() {
		full = fmt.Sprintf("%s@[P%03d %s]", title, index, partName)
	}
	return Fields{
		AID:       item.AID,
		BVID:      item.BVID,
		Title:     title,
		FullTitle: full,
		Up:        textutil.EscapeFileName(item.Owner.Name),
		UpUID:     item.Owner.MID,
		P:         index,
		Parts:     len(item.Parts),
		PartName:  partName,
		CID:       part.CID,
		Ext:       strings.TrimPrefix(strings.TrimSpace(ext), "."),
	}, nil
}

func (f Fields) lookup(name string) (any, bool) {
	switch name {
	case "aid":
		return f.AID, true
	case "bvid":
		return f.BVID, true
	case "title":
		return f.Title, true
	case "full_title":
		return f.FullTitle, true
	case "up":
		return f.Up, true
	case "up_uid":
		return f.UpUID, true
	case "p":
		return f.P, true
	case "parts":
		return f.Parts, true
	case "part_name":
		return f.PartName, true
	case "cid":
		return f.CID, true
	case "ext":
		return f.Ext, true
	default:
		return nil, false
	}
}
