// Package invoice parses the electronic invoice XML (NF-e) the workshop
// receives from its customers into the neutral shape the reconciliation
// component consumes. Only the header fields and the product lines are
// read; signatures, tax groups, and transport blocks are ignored.
package invoice

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"workshop-manager/internal/core"
)

// ErrNoItems is returned for an invoice without a single product line.
var ErrNoItems = errors.New("invoice has no line items")

// Parsed is the neutral result of parsing one invoice document.
type Parsed struct {
	Meta  core.InvoiceMeta
	Items []core.InvoiceItem
}

// nfeDocument mirrors the subset of the NF-e layout we read. The same
// structure appears either under <nfeProc><NFe> or as a bare <NFe> root,
// so both are tried.
type nfeDocument struct {
	InfNFe infNFe `xml:"NFe>infNFe"`
}

type nfeBare struct {
	InfNFe infNFe `xml:"infNFe"`
}

type infNFe struct {
	Ide ide   `xml:"ide"`
	Det []det `xml:"det"`
}

type ide struct {
	Number string `xml:"nNF"`
	DhEmi  string `xml:"dhEmi"`
	DEmi   string `xml:"dEmi"` // older layout: date without time
}

type det struct {
	Prod prod `xml:"prod"`
}

type prod struct {
	Name      string `xml:"xProd"`
	Quantity  string `xml:"qCom"`
	UnitPrice string `xml:"vUnCom"`
}

// Parse reads one invoice document. The emission timestamp is reduced to
// its calendar date; quantities and unit prices are kept as exact decimals
// (fractional quantities are resolved later by the reconciliation policy).
func Parse(r io.Reader) (*Parsed, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read invoice: %w", err)
	}

	var inf infNFe
	var wrapped nfeDocument
	if err := xml.Unmarshal(raw, &wrapped); err == nil && len(wrapped.InfNFe.Det) > 0 {
		inf = wrapped.InfNFe
	} else {
		var bare nfeBare
		if err := xml.Unmarshal(raw, &bare); err != nil {
			return nil, fmt.Errorf("decode invoice XML: %w", err)
		}
		inf = bare.InfNFe
	}

	if len(inf.Det) == 0 {
		return nil, ErrNoItems
	}

	parsed := &Parsed{
		Meta: core.InvoiceMeta{
			InvoiceNumber: inf.Ide.Number,
			Date:          emissionDate(inf.Ide),
		},
	}
	for _, d := range inf.Det {
		qty, err := decimal.NewFromString(d.Prod.Quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q for item %q: %w", d.Prod.Quantity, d.Prod.Name, err)
		}
		price, err := decimal.NewFromString(d.Prod.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price %q for item %q: %w", d.Prod.UnitPrice, d.Prod.Name, err)
		}
		parsed.Items = append(parsed.Items, core.InvoiceItem{
			Name:      d.Prod.Name,
			UnitPrice: price,
			Quantity:  qty,
		})
	}
	return parsed, nil
}

// emissionDate extracts YYYY-MM-DD from dhEmi ("2025-03-10T14:22:00-03:00")
// or falls back to the older dEmi field.
func emissionDate(i ide) string {
	if len(i.DhEmi) >= 10 {
		return i.DhEmi[:10]
	}
	return i.DEmi
}
