package entity

import "strings"

// InvoiceRecord is the tabular row expected by downstream exporters.
// All values are trimmed strings; VendorCode falls back to "UNKNOWN".
type InvoiceRecord struct {
	InvoiceDate   string `json:"invoice_date"`
	InvoiceNumber string `json:"invoice_number"`
	Address       string `json:"address"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	VendorCode    string `json:"vendor_code"`
}

// TSV returns the record encoded as a tab-separated line.
func (r InvoiceRecord) TSV() string {
	return strings.Join([]string{
		r.InvoiceDate,
		r.InvoiceNumber,
		r.Address,
		r.Description,
		r.Amount,
		r.VendorCode,
	}, "\t")
}
