package convert

import (
	"path"
	"strings"
)

// imageFieldName is the multipart field that marks a directly-uploaded
// part as an image, independent of its path.
const imageFieldName = "images"

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// CollectImages filters bundle entries down to the set eligible for
// upload: non-directories with an image extension that either live under
// an images/ directory or arrived under the "images" multipart field.
//
// Zero candidates is a reportable condition, not an empty result: an email
// bundle without images would produce a document full of dead references.
func CollectImages(entries []Entry) ([]Entry, error) {
	var images []Entry
	for _, entry := range entries {
		if entry.Dir {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Path))
		if _, ok := imageExtensions[ext]; !ok {
			continue
		}
		if strings.HasPrefix(NormalizePath(entry.Path), "images/") || entry.Field == imageFieldName {
			images = append(images, entry)
		}
	}
	if len(images) == 0 {
		return nil, ErrNoImagesFound
	}
	return images, nil
}
