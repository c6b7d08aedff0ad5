package resource

import (
	"fmt"
	"strings"
)

const (
	bvAlphabet = "FcwAPNKTMug3GV5Lj7EJnHpWsx4tb8haYeviqBz6rkCy12mUSDQX9RdoZf"
	bvBase     = int64(len(bvAlphabet))
	bvXOR      = int64(23442827791579)
	bvMask     = int64(1)<<51 - 1
	bvMaxAID   = int64(1) << 51
	bvTemplate = "BV1000000000"
)

var bvIndex = func() map[byte]int64 {
	idx := make(map[byte]int64, len(bvAlphabet))
	for i := 0; i < len(bvAlphabet); i++ {
		idx[bvAlphabet[i]] = int64(i)
	}
	return idx
}()

// EncodeBVID converts an aid to its 12-character BV form.
func EncodeBVID(aid int64) (string, error) {
	if aid <= 0 || aid >= bvMaxAID {
		return "", fmt.Errorf("aid %d out of range", aid)
	}
	out := []byte(bvTemplate)
	t := (bvMaxAID | aid) ^ bvXOR
	for i := len(out) - 1; t > 0 && i >= 3; i-- {
		out[i] = bvAlphabet[t%bvBase]
		t /= bvBase
	}
	swapBV(out)
	return string(out), nil
}

// DecodeBVID converts a BV token back to its aid. The "BV" prefix is
// case-insensitive; the encoded body is not.
func DecodeBVID(bvid string) (int64, error) {
	bvid = strings.TrimSpace(bvid)
	if len(bvid) != len(bvTemplate) {
		return 0, fmt.Errorf("bvid %q: want %d characters", bvid, len(bvTemplate))
	}
	if !strings.EqualFold(bvid[:2], "BV") {
		return 0, fmt.Errorf("bvid %q: missing BV prefix", bvid)
	}
	body := []byte(bvid)
	swapBV(body)
	var t int64
	for _, c := range body[3:] {
		v, ok := bvIndex[c]
		if !ok {
			return 0, fmt.Errorf("bvid %q: invalid character %q", bvid, c)
		}
		t = t*bvBase + v
	}
	aid := (t & bvMask) ^ bvXOR
	if aid <= 0 {
		return 0, fmt.Errorf("bvid %q: decodes to invalid aid", bvid)
	}
	return aid, nil
}

func swapBV(b []byte) {
	b[3], b[9] = b[9], b[3]
	b[4], b[7] = b[7], b[4]
}
