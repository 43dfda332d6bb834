package models

// ImageInput supplies one image either inline (base64 of the raw
// bytes) or by URL for the service to fetch. Exactly one of the two
// must be set.
type ImageInput struct {
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// CompareRequest is the body of POST /compare and POST /compare/local:
// exactly one packaging image and one delivery image.
type CompareRequest struct {
	Packaging ImageInput `json:"packaging" binding:"required"`
	Delivery  ImageInput `json:"delivery" binding:"required"`
}

// MultiAngleCompareRequest is the body of POST /compare/multi-angle:
// 1 to 5 images per side, ordered by the caller.
type MultiAngleCompareRequest struct {
	Packaging []ImageInput `json:"packaging" binding:"required"`
	Delivery  []ImageInput `json:"delivery" binding:"required"`
}
