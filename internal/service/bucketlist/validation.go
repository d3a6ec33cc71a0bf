package bucketlist

import (
	"errors"
	"fmt"
	"strings"

	"bucketlist/internal/config"
	"bucketlist/internal/domain"
	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errBlank = validation.NewError("validation_blank", "cannot be blank")

// notBlank rejects strings that are empty after trimming
var notBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
})

// completePhoto rejects a photo reference missing any of its parts
var completePhoto = validation.By(func(value interface{}) error {
	p, ok := value.(*models.Photo)
	if !ok || p == nil {
		return nil
	}
	if !p.Complete() {
		return errors.New("photo reference is incomplete")
	}
	return nil
})

func validateCreateItem(req *svc.CreateItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, notBlank, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.Description, notBlank, validation.RuneLength(1, config.MaxDescriptionLength)),
		validation.Field(&req.Photo, completePhoto),
	)
}

func validateUpdateItem(req *svc.UpdateItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, notBlank, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.Description, notBlank, validation.RuneLength(1, config.MaxDescriptionLength)),
	)
}

// validateAddComment enforces "text or photo, never neither"
func validateAddComment(req *svc.AddCommentRequest) error {
	if strings.TrimSpace(req.Text) == "" && req.Photo == nil {
		return validation.Errors{"text": errors.New("a comment needs text or a photo")}
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Text, validation.RuneLength(0, config.MaxCommentLength)),
		validation.Field(&req.Photo, completePhoto),
	)
}

func validateEditComment(req *svc.EditCommentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Text, notBlank, validation.RuneLength(1, config.MaxCommentLength)),
	)
}

func validatePhoto(photo *models.Photo) error {
	if photo == nil {
		return validation.Errors{"photo": errors.New("is required")}
	}
	return validation.Validate(photo, completePhoto)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
