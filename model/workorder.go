package model

// WorkOrder is the extracted or manually entered record for one job.
// All fields may be empty; nothing here is validated.
type WorkOrder struct {
	RawText  string `json:"raw_text"`
	Customer string `json:"customer"`
	OrderNo  string `json:"order_no"`
	WONo     string `json:"wo_no"`
	Product  string `json:"product"`
	Grade    string `json:"grade"`
	Date     string `json:"date"` // display string, DD/MM/YYYY
}

// ManualEntry holds the fields of the manual-entry form
type ManualEntry struct {
	Customer string `json:"customer"`
	OrderNo  string `json:"order_no"`
	WONo     string `json:"wo_no"`
	Product  string `json:"product"`
	Grade    string `json:"grade"`
	Standard string `json:"standard" binding:"required,oneof='API 6A' 'API 5CT' 'API 7-1'"`
	PSL      string `json:"psl" binding:"required,oneof=1 2 3 4"`
}

// RawText builds the synthetic raw text the planner reads standards and PSL from.
// Order is product, grade, standard, then "PSL"+psl.
func (e ManualEntry) RawText() string {
	return e.Product + " " + e.Grade + " " + e.Standard + " PSL" + e.PSL
}

// WorkOrder converts the form into a WorkOrder dated with date.
func (e ManualEntry) WorkOrder(date string) WorkOrder {
	return WorkOrder{
		RawText:  e.RawText(),
		Customer: e.Customer,
		OrderNo:  e.OrderNo,
		WONo:     e.WONo,
		Product:  e.Product,
		Grade:    e.Grade,
		Date:     date,
	}
}

// DateLayout is the display layout of WorkOrder.Date
const DateLayout = "02/01/2006"
