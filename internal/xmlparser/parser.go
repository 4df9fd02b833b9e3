// =============================================================================
// NGR XML to CSV Converter - XML Parser Module
// =============================================================================
//
// This module is responsible for parsing NGR partnership XML exports and
// flattening the three-level element tree into raw row collections:
//
//   <export>
//     <partnership>              <!-- one GRN row per partnership -->
//       <GRN>12345</GRN>
//       <TRADING_NAME>...</TRADING_NAME>
//       <payee>                  <!-- one Payee row per payee -->
//         <PAYEE_ID>P-1</PAYEE_ID>
//         <user>                 <!-- one User row per user -->
//           <USER_ID>U-1</USER_ID>
//           <PHONE_TYPE>Mobile</PHONE_TYPE>
//           <PHONE_NUMBER>555-1</PHONE_NUMBER>
//         </user>
//       </payee>
//     </partnership>
//   </export>
//
// EXTRACTION RULES:
//   - Only direct leaf children (elements without element children) become
//     fields; tag names are upper-cased, text content is trimmed.
//   - Duplicate tag names under one parent overwrite the earlier value
//     (last write wins). This mirrors the behavior downstream imports were
//     built against and is deliberately left as-is.
//   - Payee and User rows inherit the GRN / PAYEE_ID identifiers of their
//     ancestors verbatim, including null when the ancestor had none.
//   - PHONE_TYPE / PHONE_NUMBER children of a user are diverted into the
//     aggregate PHONE_TYPES / PHONE_NUMBERS fields ("; "-joined, null when
//     no such children exist).
//
// The rows produced here are raw: not deduplicated, one per source element,
// in document order. Deduplication is the normalizer's job.
//
// =============================================================================

package xmlparser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/grainbridge/ngr-conversion/internal/types"
)

// Element names with structural meaning in the export.
const (
	tagPartnership = "partnership"
	tagPayee       = "payee"
	tagUser        = "user"
	tagGRN         = "GRN"
	tagPayeeID     = "PAYEE_ID"
	tagPhoneType   = "PHONE_TYPE"
	tagPhoneNumber = "PHONE_NUMBER"
)

// Derived aggregate field names on user rows.
const (
	FieldPhoneTypes   = "PHONE_TYPES"
	FieldPhoneNumbers = "PHONE_NUMBERS"
)

// phoneJoinSeparator joins collected phone values in document order.
const phoneJoinSeparator = "; "

// ErrMalformedInput is returned (wrapped) when the input is not well-formed
// XML. The underlying parser message is preserved in the error chain.
var ErrMalformedInput = errors.New("malformed XML input")

// =============================================================================
// EXTRACTION RESULT
// =============================================================================

// Extraction holds the three raw row collections produced by a single parse.
// Rows are in document order and are never mutated after extraction.
type Extraction struct {
	// GRNRows contains one row per partnership element.
	GRNRows []*types.Row

	// PayeeRows contains one row per payee element, with the parent GRN
	// carried as a foreign key.
	PayeeRows []*types.Row

	// UserRows contains one row per user element, with GRN and PAYEE_ID
	// carried as foreign keys and phone fields aggregated.
	UserRows []*types.Row
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// node is a generic XML element. encoding/xml fills Children in document
// order via the ",any" rule, which is all the tree walk needs.
type node struct {
	XMLName  xml.Name
	Text     string `xml:",chardata"`
	Children []node `xml:",any"`
}

// isLeaf reports whether the element has no element children.
func (n *node) isLeaf() bool {
	return len(n.Children) == 0
}

// firstChild returns the first direct child with the given tag, or nil.
// Tag matching is case-sensitive, as in the source exports.
func (n *node) firstChild(tag string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == tag {
			return &n.Children[i]
		}
	}
	return nil
}

// identifier returns the trimmed text of the first child with the given tag.
// It returns nil when the child is absent or its text is empty; a
// whitespace-only element trims to the empty string, which is a present
// value. This asymmetry matches the leaf-field rule below only partially and
// is intentional: identifiers of empty elements are null, ordinary empty
// leaf fields are empty strings.
func (n *node) identifier(tag string) *string {
	c := n.firstChild(tag)
	if c == nil || c.Text == "" {
		return nil
	}
	return types.Str(strings.TrimSpace(c.Text))
}

// =============================================================================
// PARSER
// =============================================================================

// Parse reads a complete NGR XML document from r and extracts the raw GRN,
// Payee and User row collections.
//
// RETURNS:
//   - The extraction with all three row collections, possibly empty.
//   - An error wrapping ErrMalformedInput if the document is not well-formed.
//
// Elements missing their natural identifier child still produce a row with a
// null identifier; they are never dropped here.
func Parse(r io.Reader) (*Extraction, error) {
	dec := xml.NewDecoder(r)

	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	// Decode stops at the end of the root element; a well-formed document
	// has nothing but whitespace, comments and processing instructions
	// after it.
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: junk after document element", ErrMalformedInput)
			}
		case xml.Comment, xml.ProcInst:
		default:
			return nil, fmt.Errorf("%w: junk after document element", ErrMalformedInput)
		}
	}

	ex := &Extraction{}
	for i := range root.Children {
		p := &root.Children[i]
		if p.XMLName.Local != tagPartnership {
			continue
		}
		extractPartnership(p, ex)
	}

	return ex, nil
}

// extractPartnership flattens one partnership subtree into the extraction.
func extractPartnership(p *node, ex *Extraction) {
	grnID := p.identifier(tagGRN)

	grnRow := types.NewRow()
	for i := range p.Children {
		c := &p.Children[i]
		if c.XMLName.Local == tagPayee || !c.isLeaf() {
			continue
		}
		grnRow.Set(strings.ToUpper(c.XMLName.Local), types.Str(strings.TrimSpace(c.Text)))
	}
	ex.GRNRows = append(ex.GRNRows, grnRow)

	for i := range p.Children {
		c := &p.Children[i]
		if c.XMLName.Local == tagPayee {
			extractPayee(c, grnID, ex)
		}
	}
}

// extractPayee flattens one payee subtree, carrying the partnership's GRN.
func extractPayee(p *node, grnID *string, ex *Extraction) {
	payeeID := p.identifier(tagPayeeID)

	// FK first; a leaf child named GRN would overwrite it (last write wins).
	payeeRow := types.NewRow()
	payeeRow.Set(tagGRN, grnID)
	for i := range p.Children {
		c := &p.Children[i]
		if c.XMLName.Local == tagUser || !c.isLeaf() {
			continue
		}
		payeeRow.Set(strings.ToUpper(c.XMLName.Local), types.Str(strings.TrimSpace(c.Text)))
	}
	ex.PayeeRows = append(ex.PayeeRows, payeeRow)

	for i := range p.Children {
		c := &p.Children[i]
		if c.XMLName.Local == tagUser {
			ex.UserRows = append(ex.UserRows, extractUser(c, grnID, payeeID))
		}
	}
}

// extractUser flattens one user element, diverting phone children into the
// aggregate fields.
func extractUser(u *node, grnID, payeeID *string) *types.Row {
	row := types.NewRow()
	row.Set(tagGRN, grnID)
	row.Set(tagPayeeID, payeeID)

	var phoneTypes, phoneNumbers []string
	for i := range u.Children {
		c := &u.Children[i]
		switch {
		case c.XMLName.Local == tagPhoneType:
			phoneTypes = append(phoneTypes, strings.TrimSpace(c.Text))
		case c.XMLName.Local == tagPhoneNumber:
			phoneNumbers = append(phoneNumbers, strings.TrimSpace(c.Text))
		case c.isLeaf():
			row.Set(strings.ToUpper(c.XMLName.Local), types.Str(strings.TrimSpace(c.Text)))
		}
	}

	row.Set(FieldPhoneTypes, joined(phoneTypes))
	row.Set(FieldPhoneNumbers, joined(phoneNumbers))

	return row
}

// joined returns the "; "-joined values, or null when none were collected.
// Never the empty string: no phone children means no aggregate value.
func joined(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return types.Str(strings.Join(values, phoneJoinSeparator))
}
