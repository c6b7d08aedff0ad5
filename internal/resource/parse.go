package resource

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// SpaceHost serves user-space pages, including favourites folders.
const SpaceHost = "space.bilibili.com"

// Parse classifies input. In section mode the trimmed input is looked up in
// sections and nothing else is tried.
func Parse(input string, sectionMode bool, sections SectionTable) Reference {
	token := strings.TrimSpace(input)
	ref := Reference{Input: token}

	if sectionMode {
		if sections == nil {
			ref.Outcome = NotFound
			return ref
		}
		id, ok := sections.LookupSection(token)
		if !ok {
			ref.Outcome = NotFound
			return ref
		}
		return collection(ref, id, token)
	}

	if isAbsoluteURL(token) {
		u, err := url.Parse(token)
		if err != nil {
			ref.Outcome = Unparseable
			return ref
		}
		if strings.EqualFold(u.Hostname(), SpaceHost) {
			if id, ok := favouriteID(u); ok {
				return collection(ref, id, "")
			}
		}
		token = lastSegment(u.Path)
	}

	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		return video(ref, id)
	}

	lower := strings.ToLower(token)
	switch {
	case strings.HasPrefix(lower, "av"):
		id, err := strconv.ParseInt(token[2:], 10, 64)
		if err != nil {
			ref.Outcome = Unparseable
			return ref
		}
		return video(ref, id)
	case strings.HasPrefix(lower, "bv"):
		id, err := DecodeBVID(token)
		if err != nil {
			ref.Outcome = Unparseable
			return ref
		}
		return video(ref, id)
	}

	ref.Outcome = Unparseable
	return ref
}

func isAbsoluteURL(token string) bool {
	lower := strings.ToLower(token)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func favouriteID(u *url.URL) (int64, bool) {
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return 0, false
	}
	raw := strings.TrimSpace(values.Get("fid"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return strings.TrimSpace(path.Base(p))
}

func video(ref Reference, id int64) Reference {
	ref.Kind = KindVideo
	ref.ID = id
	ref.Outcome = Found
	return ref
}

func collection(ref Reference, id int64, section string) Reference {
	ref.Kind = KindCollection
	ref.ID = id
	ref.Section = section
	ref.Outcome = Found
	return ref
}
