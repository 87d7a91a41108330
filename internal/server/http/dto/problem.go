package dto

// ProblemResponse describes a failed request.
type ProblemResponse struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}
