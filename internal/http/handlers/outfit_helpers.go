package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/pkg/utils"
)

// === REQUEST ADAPTER ===

// parseOutfitRequest normalizes the two physical request encodings into one
// OutfitRequest. Transport shape is decided here once; downstream code never
// branches on it again.
func (h *OutfitHandler) parseOutfitRequest(c *gin.Context) (*models.OutfitRequest, error) {
	contentType := c.GetHeader("Content-Type")

	switch {
	case strings.Contains(contentType, "application/json"):
		return h.parseJSONRequest(c)
	case strings.Contains(contentType, "multipart/form-data"),
		strings.Contains(contentType, "application/x-www-form-urlencoded"):
		return h.parseFormRequest(c)
	default:
		return nil, fmt.Errorf("Unsupported Content-Type. Expected multipart/form-data or application/json")
	}
}

func (h *OutfitHandler) parseJSONRequest(c *gin.Context) (*models.OutfitRequest, error) {
	var body models.OutfitJSONRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, fmt.Errorf("User photo is required")
	}

	userName := body.UserPhoto.Name
	if userName == "" {
		userName = "user.jpg"
	}
	userData, err := utils.DecodeBase64(body.UserPhoto.Data)
	if err != nil {
		return nil, err
	}

	req := &models.OutfitRequest{
		UserPhoto: models.ImageFile{
			Data:     userData,
			MimeType: normalizeMime(body.UserPhoto.Mime, userName),
			Name:     userName,
		},
		Scene: body.Scene,
	}

	for i, item := range body.ClothingPhotos {
		if i >= models.MaxClothingPhotos {
			break
		}
		name := item.Name
		if name == "" {
			name = fmt.Sprintf("cloth_%d.jpg", i)
		}
		data, err := utils.DecodeBase64(item.Data)
		if err != nil {
			return nil, err
		}
		req.ClothingPhotos = append(req.ClothingPhotos, models.ImageFile{
			Data:     data,
			MimeType: normalizeMime(item.Mime, name),
			Name:     name,
		})
	}

	return req, nil
}

func (h *OutfitHandler) parseFormRequest(c *gin.Context) (*models.OutfitRequest, error) {
	userFile, userHeader, err := c.Request.FormFile(userPhotoParamKey)
	if err != nil {
		return nil, fmt.Errorf("User photo is required")
	}
	defer userFile.Close()

	userData, err := readUpload(userFile, h.config.Storage.MaxFileSize)
	if err != nil {
		return nil, err
	}

	req := &models.OutfitRequest{
		UserPhoto: models.ImageFile{
			Data:     userData,
			MimeType: normalizeMime(userHeader.Header.Get("Content-Type"), userHeader.Filename),
			Name:     userHeader.Filename,
		},
		Scene: c.PostForm(sceneParamKey),
	}

	for i := 0; i < models.MaxClothingPhotos; i++ {
		file, header, err := c.Request.FormFile(fmt.Sprintf(clothingPhotoParamFmt, i))
		if err != nil {
			continue
		}
		data, readErr := readUpload(file, h.config.Storage.MaxFileSize)
		file.Close()
		if readErr != nil {
			return nil, readErr
		}
		req.ClothingPhotos = append(req.ClothingPhotos, models.ImageFile{
			Data:     data,
			MimeType: normalizeMime(header.Header.Get("Content-Type"), header.Filename),
			Name:     header.Filename,
		})
	}

	return req, nil
}

func readUpload(file multipart.File, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("uploaded file exceeds maximum size %d", maxSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}
	return data, nil
}

func decodeDataURI(uri, prefix string) ([]byte, error) {
	return utils.DecodeBase64(strings.TrimPrefix(uri, prefix))
}

// normalizeMime constrains the declared type to JPEG or PNG, inferring from
// the filename extension when the declaration is absent or unusable.
func normalizeMime(declared, filename string) string {
	switch declared {
	case utils.MimeJPEG, utils.MimePNG:
		return declared
	}
	return utils.InferMimeType(filename)
}
