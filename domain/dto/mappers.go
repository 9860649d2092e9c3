package dto

import (
	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
)

func GalleryToResponse(g *services.Gallery) *GalleryResponse {
	resp := &GalleryResponse{
		GalleryID: g.GalleryID,
		UserName:  g.UserName,
		Images:    make([]GalleryImageResponse, 0, len(g.Images)),
	}
	for _, img := range g.Images {
		resp.Images = append(resp.Images, GalleryImageResponse{
			PhotoID:    img.PhotoID,
			Filename:   img.Filename,
			URL:        img.URL,
			UploadedAt: img.UploadedAt,
			Similarity: img.Similarity,
		})
	}
	return resp
}

func UserSummaryToResponse(u *models.UserSummary) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		GalleryID:  u.GalleryID,
		CreatedAt:  u.CreatedAt,
		MatchCount: u.MatchCount,
	}
}

func UserSummariesToResponse(users []models.UserSummary) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = UserSummaryToResponse(&users[i])
	}
	return out
}

func PhotoToImageResponse(p *models.Photo, userIDs []uuid.UUID) ImageResponse {
	if userIDs == nil {
		userIDs = []uuid.UUID{}
	}
	return ImageResponse{
		ID:           p.ID,
		Filename:     p.Filename,
		OriginalName: p.OriginalName,
		ContentType:  p.ContentType,
		SizeBytes:    p.SizeBytes,
		Width:        p.Width,
		Height:       p.Height,
		Processed:    p.IsProcessed(),
		Status:       string(p.Status),
		FaceCount:    p.FaceCount,
		Attempts:     p.Attempts,
		LastError:    p.LastError,
		UploadedAt:   p.UploadedAt,
		ProcessedAt:  p.ProcessedAt,
		UserMatches:  userIDs,
		MatchCount:   len(userIDs),
	}
}

func PhotoSummariesToResponse(photos []models.PhotoSummary) []ImageResponse {
	out := make([]ImageResponse, len(photos))
	for i := range photos {
		out[i] = PhotoToImageResponse(&photos[i].Photo, photos[i].UserIDs)
	}
	return out
}

func IngestResultToResponse(res *services.IngestResult) *UploadResponse {
	resp := &UploadResponse{
		Success:       true,
		UploadedCount: res.Stored,
		Files:         make([]ImageResponse, 0, len(res.Photos)),
		Rejected:      make([]RejectedFile, 0, len(res.Rejected)),
	}
	for i := range res.Photos {
		resp.Files = append(resp.Files, PhotoToImageResponse(&res.Photos[i], nil))
	}
	for _, r := range res.Rejected {
		resp.Rejected = append(resp.Rejected, RejectedFile{Filename: r.Filename, Reason: r.Reason})
	}
	return resp
}
