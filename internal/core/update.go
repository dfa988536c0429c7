package core

import "strings"

// Update structs list every mutable field of a record. A nil pointer leaves
// the field untouched; JSON decoding rejects keys that are not listed here.
type (
	CabinetUpdate struct {
		CabinetType *string `json:"cabinet_type" validate:"omitempty,min=1"`
		Code        *string `json:"code" validate:"omitempty,max=100"`
		RehabDate   *Date   `json:"rehab_date"`
		QualifiedBy *string `json:"qualified_by" validate:"omitempty,max=200"`
		Location    *string `json:"location" validate:"omitempty,max=200"`
		Receiver    *string `json:"receiver" validate:"omitempty,max=200"`
		IssueDate   *Date   `json:"issue_date"`
		Notes       *string `json:"notes" validate:"omitempty,max=1000"`
	}

	AssetUpdate struct {
		AssetType       *string `json:"asset_type" validate:"omitempty,min=1"`
		Model           *string `json:"model" validate:"omitempty,max=200"`
		SerialOrCode    *string `json:"serial_or_code" validate:"omitempty,max=100"`
		Quantity        *int    `json:"quantity"`
		PrevLocation    *string `json:"prev_location" validate:"omitempty,max=200"`
		RehabDate       *Date   `json:"rehab_date"`
		SupplyDate      *Date   `json:"supply_date"`
		QualifiedBy     *string `json:"qualified_by" validate:"omitempty,max=200"`
		Lifted          *bool   `json:"lifted"`
		Inspector       *string `json:"inspector" validate:"omitempty,max=200"`
		Tested          *bool   `json:"tested"`
		IssueDate       *Date   `json:"issue_date"`
		CurrentLocation *string `json:"current_location" validate:"omitempty,max=200"`
		Requester       *string `json:"requester" validate:"omitempty,max=200"`
		Receiver        *string `json:"receiver" validate:"omitempty,max=200"`
		Notes           *string `json:"notes" validate:"omitempty,max=1000"`
	}

	SpareUpdate struct {
		PartCategory *string `json:"part_category" validate:"omitempty,min=1"`
		PartName     *string `json:"part_name" validate:"omitempty,max=200"`
		PartModel    *string `json:"part_model" validate:"omitempty,max=200"`
		Quantity     *int    `json:"quantity"`
		Serial       *string `json:"serial" validate:"omitempty,max=100"`
		Source       *string `json:"source" validate:"omitempty,max=200"`
		QualifiedBy  *string `json:"qualified_by" validate:"omitempty,max=200"`
		RehabDate    *Date   `json:"rehab_date"`
		Tested       *bool   `json:"tested"`
		Notes        *string `json:"notes" validate:"omitempty,max=1000"`
	}
)

// Apply copies the set fields onto c. The caller validates the result.
func (u CabinetUpdate) Apply(c *CabinetRehab) {
	setString(&c.CabinetType, u.CabinetType)
	setString(&c.Code, u.Code)
	setDate(&c.RehabDate, u.RehabDate)
	setString(&c.QualifiedBy, u.QualifiedBy)
	setString(&c.Location, u.Location)
	setString(&c.Receiver, u.Receiver)
	setDate(&c.IssueDate, u.IssueDate)
	setString(&c.Notes, u.Notes)
	c.Normalize()
}

func (u AssetUpdate) Apply(a *AssetRehab) {
	setString(&a.AssetType, u.AssetType)
	setString(&a.Model, u.Model)
	setString(&a.SerialOrCode, u.SerialOrCode)
	if u.Quantity != nil {
		a.Quantity = *u.Quantity
	}
	setString(&a.PrevLocation, u.PrevLocation)
	setDate(&a.RehabDate, u.RehabDate)
	setDate(&a.SupplyDate, u.SupplyDate)
	setString(&a.QualifiedBy, u.QualifiedBy)
	if u.Lifted != nil {
		a.Lifted = boolPtr(*u.Lifted)
	}
	setString(&a.Inspector, u.Inspector)
	if u.Tested != nil {
		a.Tested = boolPtr(*u.Tested)
	}
	setDate(&a.IssueDate, u.IssueDate)
	setString(&a.CurrentLocation, u.CurrentLocation)
	setString(&a.Requester, u.Requester)
	setString(&a.Receiver, u.Receiver)
	setString(&a.Notes, u.Notes)
	a.Normalize()
}

func (u SpareUpdate) Apply(s *SparePartRehab) {
	setString(&s.PartCategory, u.PartCategory)
	setString(&s.PartName, u.PartName)
	setString(&s.PartModel, u.PartModel)
	if u.Quantity != nil {
		s.Quantity = *u.Quantity
	}
	setString(&s.Serial, u.Serial)
	setString(&s.Source, u.Source)
	setString(&s.QualifiedBy, u.QualifiedBy)
	setDate(&s.RehabDate, u.RehabDate)
	if u.Tested != nil {
		s.Tested = boolPtr(*u.Tested)
	}
	setString(&s.Notes, u.Notes)
	s.Normalize()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setDate(dst *Date, v *Date) {
	if v != nil {
		*dst = *v
	}
}

func boolPtr(b bool) *bool {
	return &b
}
