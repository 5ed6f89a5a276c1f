package dto

type EquipmentDTO struct {
	ID          uint64 `json:"id"`
	InstituteID uint64 `json:"instituteId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Quantity    int    `json:"quantity"`
}

type ImportResultDTO struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
