package media

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

const DefaultImageName = "downloaded_image.jpg"

var ErrEmptyURL = errors.New("please enter a URL")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
}

func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	return raw, nil
}

// IsImageURL reports whether the URL path ends in a known image extension.
// The query string is ignored.
func IsImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}

// ImageFilename is the last path segment of the URL or DefaultImageName.
func ImageFilename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return DefaultImageName
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return DefaultImageName
	}
	return name
}

func SourceHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
