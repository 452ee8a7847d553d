package model

// Event is one candidate service record extracted around a date anchor.
// All field values are raw strings as they appeared on the page; an empty
// string means the field was absent. Events are immutable once produced.
type Event struct {
	ServiceDate  string   `json:"service_date,omitempty"`
	Odometer     string   `json:"odometer,omitempty"`
	InvoiceNo    string   `json:"invoice_no,omitempty"`
	TotalAmount  string   `json:"total_amount,omitempty"`
	Garage       string   `json:"garage,omitempty"`
	Parts        []string `json:"parts"`
	PartsAmounts []string `json:"parts_amounts"` // index-aligned with Parts
	RawBlockText string   `json:"raw_block_text"`
	PageIndex    int      `json:"page_index,omitempty"` // 1-based
}

// Key is the identity tuple used for deduplication. Events lacking all
// three fields share the zero key and collapse to the first-seen record.
func (e Event) Key() EventKey {
	return EventKey{
		ServiceDate: e.ServiceDate,
		Odometer:    e.Odometer,
		InvoiceNo:   e.InvoiceNo,
	}
}

// EventKey identifies an event for dedup purposes.
type EventKey struct {
	ServiceDate string
	Odometer    string
	InvoiceNo   string
}
