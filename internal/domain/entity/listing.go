package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ListingPreview struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Location string  `json:"location"`
	ImageURL string  `json:"imageUrl"`
}

type ListingDetail struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	Reviews     Reviews `json:"reviews"`
	ImageURL    string  `json:"imageUrl"`
}

// HasRating reports whether the listing carries a score; 0 means unrated.
func (d *ListingDetail) HasRating() bool {
	return d.Rating > 0
}

func (d *ListingDetail) Preview() ListingPreview {
	return ListingPreview{
		ID:       d.ID,
		Title:    d.Title,
		Price:    d.Price,
		Location: d.Location,
		ImageURL: d.ImageURL,
	}
}

type Review struct {
	ID           string `json:"id,omitempty"`
	ReviewerID   string `json:"reviewer_id,omitempty"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	Comments     string `json:"comments"`
	Date         *Time  `json:"date,omitempty"`
}

// Reviews decodes either a JSON array or the placeholder string the
// listings service sends for a listing without reviews.
type Reviews []Review

func (r *Reviews) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] == '"' {
		*r = Reviews{}
		return nil
	}
	var list []Review
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return fmt.Errorf("decode reviews: %w", err)
	}
	*r = list
	return nil
}

type AddReviewRequest struct {
	ReviewerID   string   `json:"reviewer_id"`
	ReviewerName string   `json:"reviewer_name,omitempty"`
	Comments     string   `json:"comments"`
	Date         string   `json:"date,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ListingReviews struct {
	ListingID    string   `json:"listing_id"`
	ListingTitle string   `json:"listing_title"`
	Reviews      []Review `json:"reviews"`
}

type Address struct {
	Street         string `json:"street,omitempty"`
	Suburb         string `json:"suburb,omitempty"`
	GovernmentArea string `json:"government_area,omitempty"`
	Market         string `json:"market,omitempty"`
	Country        string `json:"country,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
}

type Images struct {
	PictureURL string `json:"picture_url,omitempty"`
}

// ListingInput is the admin create/update payload. Extra carries any
// additional document fields; known fields win on key collisions.
type ListingInput struct {
	Name         string                 `json:"name,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Price        float64                `json:"price,omitempty"`
	PropertyType string                 `json:"property_type,omitempty"`
	RoomType     string                 `json:"room_type,omitempty"`
	Accommodates int                    `json:"accommodates,omitempty"`
	Bedrooms     int                    `json:"bedrooms,omitempty"`
	Beds         int                    `json:"beds,omitempty"`
	Bathrooms    float64                `json:"bathrooms,omitempty"`
	Address      *Address               `json:"address,omitempty"`
	Amenities    []string               `json:"amenities,omitempty"`
	Images       *Images                `json:"images,omitempty"`
	Extra        map[string]interface{} `json:"-"`
}

func (in ListingInput) MarshalJSON() ([]byte, error) {
	type plain ListingInput
	known, err := json.Marshal(plain(in))
	if err != nil {
		return nil, err
	}
	if len(in.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]interface{}, len(in.Extra)+8)
	for k, v := range in.Extra {
		merged[k] = v
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// Time accepts ISO-8601 and the RFC 1123 form Flask uses for datetimes.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
