package controllers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/utils"
)

// ProviderController handles provider profile endpoints
type ProviderController struct {
	db *mongo.Client
}

// NewProviderController creates a new provider controller
func NewProviderController(db *mongo.Client) *ProviderController {
	return &ProviderController{db: db}
}

func (pc *ProviderController) collection(name string) *mongo.Collection {
	return config.GetCollection(pc.db, name)
}

var weekdayKeys = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validateWorkingHours(hours models.WorkingHours) error {
	for day, wd := range hours {
		if !weekdayKeys[day] {
			return fmt.Errorf("unknown weekday: %s", day)
		}
		if wd.Closed {
			continue
		}
		open, err := utils.ParseSlotTime(wd.Open)
		if err != nil {
			return fmt.Errorf("invalid opening time for %s", day)
		}
		closeT, err := utils.ParseSlotTime(wd.Close)
		if err != nil {
			return fmt.Errorf("invalid closing time for %s", day)
		}
		if !open.Before(closeT) {
			return fmt.Errorf("opening time must be before closing time for %s", day)
		}
	}
	return nil
}

// CreateProviderProfile registers a business profile for the current
// user and upgrades their account to the provider role.
func (pc *ProviderController) CreateProviderProfile(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.ProviderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid request",
			MessageAr: "طلب غير صالح",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Business name is required in both languages",
			MessageAr: "اسم العمل مطلوب باللغتين",
		})
	}
	if req.WorkingHours != nil {
		if err := validateWorkingHours(req.WorkingHours); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:    http.StatusBadRequest,
				Message:   err.Error(),
				MessageAr: "ساعات العمل غير صالحة",
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	count, err := pc.collection("providers").CountDocuments(ctx, bson.M{"userId": userID})
	if err == nil && count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:    http.StatusConflict,
			Message:   "A provider profile already exists for this account",
			MessageAr: "يوجد ملف مزود خدمة لهذا الحساب بالفعل",
		})
	}

	now := time.Now()
	provider := models.Provider{
		UserID:         userID,
		BusinessName:   utils.SanitizeInput(req.BusinessName),
		BusinessNameAr: utils.SanitizeInput(req.BusinessNameAr),
		Description:    utils.SanitizeInput(req.Description),
		DescriptionAr:  utils.SanitizeInput(req.DescriptionAr),
		Location:       req.Location,
		WorkingHours:   req.WorkingHours,
		Verified:       false,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	result, err := pc.collection("providers").InsertOne(ctx, provider)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:    http.StatusConflict,
				Message:   "A provider profile already exists for this account",
				MessageAr: "يوجد ملف مزود خدمة لهذا الحساب بالفعل",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create provider profile",
		})
	}
	provider.ID = result.InsertedID.(primitive.ObjectID)

	_, err = pc.collection("users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"userType":   models.UserTypeProvider,
		"providerId": provider.ID,
		"updatedAt":  now,
	}})
	if err != nil {
		log.Printf("Failed to upgrade user %s to provider: %v", userID.Hex(), err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:    http.StatusCreated,
		Message:   "Provider profile created",
		MessageAr: "تم إنشاء ملف مزود الخدمة",
		Data:      provider,
	})
}

// GetMyProvider returns the current user's own provider profile
func (pc *ProviderController) GetMyProvider(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var provider models.Provider
	if err := pc.collection("providers").FindOne(ctx, bson.M{"userId": userID}).Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Provider profile retrieved",
		Data:    provider,
	})
}

// GetProvider is the public provider detail endpoint
func (pc *ProviderController) GetProvider(c echo.Context) error {
	providerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid provider ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var provider models.Provider
	if err := pc.collection("providers").FindOne(ctx, bson.M{"_id": providerID, "isActive": true}).Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider not found",
			MessageAr: "مزود الخدمة غير موجود",
		})
	}

	// Attach the active catalog
	cursor, err := pc.collection("services").Find(ctx, bson.M{"providerId": provider.ID, "isActive": true})
	services := []models.Service{}
	if err == nil {
		defer cursor.Close(ctx)
		_ = cursor.All(ctx, &services)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Provider retrieved",
		Data: map[string]interface{}{
			"provider": provider,
			"services": services,
		},
	})
}

// ListProviders is the public directory: filter by city or verified
// status, sorted by rating.
func (pc *ProviderController) ListProviders(c echo.Context) error {
	filter := bson.M{"isActive": true}
	if city := c.QueryParam("city"); city != "" {
		filter["location.city"] = utils.SanitizeInput(city)
	}
	if c.QueryParam("verified") == "true" {
		filter["verified"] = true
	}
	if search := c.QueryParam("q"); search != "" {
		term := utils.SanitizeInput(search)
		filter["$or"] = []bson.M{
			{"businessName": primitive.Regex{Pattern: term, Options: "i"}},
			{"businessNameAr": primitive.Regex{Pattern: term, Options: "i"}},
		}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	providers := pc.collection("providers")
	total, err := providers.CountDocuments(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count providers",
		})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating.average", Value: -1}, {Key: "rating.count", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := providers.Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve providers",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Provider{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode providers",
		})
	}

	return c.JSON(http.StatusOK, models.PaginatedResponse{
		Status:  http.StatusOK,
		Message: "Providers retrieved",
		Data:    results,
		Page:    page,
		Limit:   limit,
		Total:   total,
	})
}

// UpdateProviderProfile updates the current provider's business details
func (pc *ProviderController) UpdateProviderProfile(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.ProviderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Business name is required in both languages",
			MessageAr: "اسم العمل مطلوب باللغتين",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	set := bson.M{
		"businessName":   utils.SanitizeInput(req.BusinessName),
		"businessNameAr": utils.SanitizeInput(req.BusinessNameAr),
		"description":    utils.SanitizeInput(req.Description),
		"descriptionAr":  utils.SanitizeInput(req.DescriptionAr),
		"location":       req.Location,
		"updatedAt":      time.Now(),
	}
	if req.WorkingHours != nil {
		if err := validateWorkingHours(req.WorkingHours); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:    http.StatusBadRequest,
				Message:   err.Error(),
				MessageAr: "ساعات العمل غير صالحة",
			})
		}
		set["workingHours"] = req.WorkingHours
	}

	result := pc.collection("providers").FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var provider models.Provider
	if err := result.Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Provider profile updated",
		MessageAr: "تم تحديث ملف مزود الخدمة",
		Data:      provider,
	})
}

// UpdateWorkingHours replaces the provider's weekly schedule
func (pc *ProviderController) UpdateWorkingHours(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.WorkingHoursRequest
	if err := c.Bind(&req); err != nil || req.WorkingHours == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Working hours are required",
			MessageAr: "ساعات العمل مطلوبة",
		})
	}
	if err := validateWorkingHours(req.WorkingHours); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   err.Error(),
			MessageAr: "ساعات العمل غير صالحة",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := pc.collection("providers").FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"workingHours": req.WorkingHours, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var provider models.Provider
	if err := result.Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Working hours updated",
		MessageAr: "تم تحديث ساعات العمل",
		Data:      provider,
	})
}

// UploadMedia attaches a logo, portfolio image, or portfolio video to
// the provider profile. Files arrive base64 encoded; images are resized
// and videos get a generated thumbnail.
func (pc *ProviderController) UploadMedia(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.ProviderMediaRequest
	if err := c.Bind(&req); err != nil || req.MediaFile == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Media file is required",
			MessageAr: "ملف الوسائط مطلوب",
		})
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "image"
	}
	if mediaType != "image" && mediaType != "video" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Media type must be 'image' or 'video'",
			MessageAr: "نوع الوسائط يجب أن يكون صورة أو فيديو",
		})
	}
	if req.FileName != "" {
		if err := utils.ValidateFileType(req.FileName, mediaType); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:    http.StatusBadRequest,
				Message:   err.Error(),
				MessageAr: "نوع الملف غير مدعوم",
			})
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(req.MediaFile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Media file must be base64 encoded",
			MessageAr: "يجب ترميز ملف الوسائط بصيغة base64",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var provider models.Provider
	if err := pc.collection("providers").FindOne(ctx, bson.M{"userId": userID}).Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	filename := req.FileName
	if filename == "" {
		if mediaType == "video" {
			filename = "upload.mp4"
		} else {
			filename = "upload.jpg"
		}
	}

	update := bson.M{"updatedAt": time.Now()}
	push := bson.M{}
	var mediaURL string

	if mediaType == "video" {
		mediaURL, err = utils.SaveProviderVideo(decoded, filename)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to save video",
			})
		}
		push["portfolioUrls"] = mediaURL
		if thumbURL, thumbErr := utils.GenerateVideoThumbnail(mediaURL); thumbErr == nil {
			push["thumbnailUrls"] = thumbURL
		} else {
			log.Printf("Thumbnail generation failed for %s: %v", mediaURL, thumbErr)
		}
	} else {
		mediaURL, err = utils.SaveProviderImage(decoded, filename, req.IsLogo)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to save image",
			})
		}
		if req.IsLogo {
			update["logoUrl"] = mediaURL
		} else {
			push["portfolioUrls"] = mediaURL
		}
	}

	changes := bson.M{"$set": update}
	if len(push) > 0 {
		changes["$push"] = push
	}
	if _, err := pc.collection("providers").UpdateOne(ctx, bson.M{"_id": provider.ID}, changes); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update provider media",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Media uploaded",
		MessageAr: "تم رفع الوسائط",
		Data:      map[string]string{"url": mediaURL},
	})
}

// VerifyProvider toggles the admin verification badge
func (pc *ProviderController) VerifyProvider(c echo.Context) error {
	providerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid provider ID",
		})
	}

	var req struct {
		Verified bool `json:"verified"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := pc.collection("providers").FindOneAndUpdate(ctx,
		bson.M{"_id": providerID},
		bson.M{"$set": bson.M{"verified": req.Verified, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var provider models.Provider
	if err := result.Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider not found",
			MessageAr: "مزود الخدمة غير موجود",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Provider verification updated",
		MessageAr: "تم تحديث توثيق مزود الخدمة",
		Data:      provider,
	})
}
