package dto

// --- Profile Management ---

type AdminProfileListRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type AdminGrantCreditsRequest struct {
	Amount int    `json:"amount" validate:"required,ne=0,min=-10000,max=10000"`
	Note   string `json:"note" validate:"max=200"`
}

type AdminSetUnlimitedRequest struct {
	Unlimited bool `json:"unlimited"`
}

type AdminProfileListResponse struct {
	Profiles []*ProfileResponse `json:"profiles"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
}

// --- Messages ---

type AdminMessageListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pending replied"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}
