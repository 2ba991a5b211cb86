package domain

// InferenceResult is the outcome of an inference request. It's a closed set of variants, one per operation plus
// FailureResult; consumers are expected to switch over all of them.
type InferenceResult interface {
	isInferenceResult()
}

// BoundingBox a detected object; all coordinates are fractions of the image's width/height in [0,1].
type BoundingBox struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Point a located object; coordinates are fractions of the image's width/height in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CaptionResult struct {
	Text string
	// Raw the JSON body returned by the endpoint.
	Raw []byte
}

type QueryResult struct {
	Question string
	Answer   string
	Raw      []byte
}

type DetectResult struct {
	Object  string
	Objects []BoundingBox
	Raw     []byte
}

type PointResult struct {
	Object string
	Points []Point
	Raw    []byte
}

// FailureResult the request failed for good (all attempts were used up). Never raised as an error: it's shown to
// the user as text.
type FailureResult struct {
	Message string
}

func (CaptionResult) isInferenceResult() {}
func (QueryResult) isInferenceResult()   {}
func (DetectResult) isInferenceResult()  {}
func (PointResult) isInferenceResult()   {}
func (FailureResult) isInferenceResult() {}
