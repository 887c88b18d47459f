package services

import (
	"fmt"
	"image"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/mukhammadalimk/natours/utils"
)

const (
	tourImageWidth  = 2000
	tourImageHeight = 1333
	userPhotoSize   = 500
	jpegQuality     = 90
)

// ImageService resizes uploads and stores them under <PublicDir>/img.
type ImageService struct {
	PublicDir string
	now       func() time.Time
}

func NewImageService(publicDir string) *ImageService {
	return &ImageService{PublicDir: publicDir, now: time.Now}
}

func (s *ImageService) dir(kind string) (string, error) {
	d := filepath.Join(s.PublicDir, "img", kind)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

// decode rejects anything that is not declared as, and decodable as, an image.
func decode(fh *multipart.FileHeader) (image.Image, error) {
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, utils.ErrNotAnImage
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, utils.ErrNotAnImage
	}
	return img, nil
}

func (s *ImageService) save(img image.Image, kind, name string, w, h int) (string, error) {
	d, err := s.dir(kind)
	if err != nil {
		return "", err
	}
	out := imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(out, filepath.Join(d, name), imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return name, nil
}

// SaveUserPhoto stores a 500x500 JPEG as user-<id>-<unixms>.jpeg.
func (s *ImageService) SaveUserPhoto(userID uint, fh *multipart.FileHeader) (string, error) {
	img, err := decode(fh)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("user-%d-%d.jpeg", userID, s.now().UnixMilli())
	return s.save(img, "users", name, userPhotoSize, userPhotoSize)
}

// SaveTourImages stores the cover (if any) and up to three gallery images.
func (s *ImageService) SaveTourImages(tourID uint, cover *multipart.FileHeader, images []*multipart.FileHeader) (string, []string, error) {
	stamp := s.now().UnixMilli()
	var coverName string
	if cover != nil {
		img, err := decode(cover)
		if err != nil {
			return "", nil, err
		}
		coverName, err = s.save(img, "tours", fmt.Sprintf("tour-%d-%d-cover.jpeg", tourID, stamp), tourImageWidth, tourImageHeight)
		if err != nil {
			return "", nil, err
		}
	}

	if len(images) > 3 {
		images = images[:3]
	}
	names := make([]string, 0, len(images))
	for i, fh := range images {
		img, err := decode(fh)
		if err != nil {
			return "", nil, err
		}
		name, err := s.save(img, "tours", fmt.Sprintf("tour-%d-%d-%d.jpeg", tourID, stamp, i+1), tourImageWidth, tourImageHeight)
		if err != nil {
			return "", nil, err
		}
		names = append(names, name)
	}
	return coverName, names, nil
}
