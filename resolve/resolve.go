// ABOUTME: Field resolver choosing between a banner's and its account's attribute values
// ABOUTME: Text and list fields fall back when empty; flag fields fall back only when unset
package resolve

import (
	"github.com/harperreed/bannerbook/models"
)

// Kind selects the null-policy used for an attribute.
type Kind int

const (
	// Text attributes use the banner value only when non-empty.
	Text Kind = iota
	// List attributes use the banner value only when it has elements.
	List
	// Flag attributes use the banner value whenever it is set, even to false.
	Flag
)

// Value is the resolved value of one attribute. Exactly one field is
// meaningful, chosen by the attribute's Kind.
type Value struct {
	Kind Kind
	Text string
	List []string
	Flag *bool
}

// IsEmpty reports whether the value should yield to the fallback source.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case List:
		return len(v.List) == 0
	case Flag:
		return v.Flag == nil
	default:
		return v.Text == ""
	}
}

// Attribute describes one overridable field.
type Attribute struct {
	Name string
	Kind Kind
	get  func(*models.Overridable) Value
}

func text(name string, f func(*models.Overridable) string) Attribute {
	return Attribute{Name: name, Kind: Text, get: func(o *models.Overridable) Value {
		return Value{Kind: Text, Text: f(o)}
	}}
}

func list(name string, f func(*models.Overridable) []string) Attribute {
	return Attribute{Name: name, Kind: List, get: func(o *models.Overridable) Value {
		return Value{Kind: List, List: f(o)}
	}}
}

func flag(name string, f func(*models.Overridable) *bool) Attribute {
	return Attribute{Name: name, Kind: Flag, get: func(o *models.Overridable) Value {
		return Value{Kind: Flag, Flag: f(o)}
	}}
}

var attributes = []Attribute{
	text("channel", func(o *models.Overridable) string { return o.Channel }),
	text("footprint", func(o *models.Overridable) string { return o.Footprint }),
	list("operatingStates", func(o *models.Overridable) []string { return o.OperatingStates }),
	flag("isJBP", func(o *models.Overridable) *bool { return o.IsJBP }),
	text("lastJBPDate", func(o *models.Overridable) string { return o.LastJBPDate }),
	text("nextJBPDate", func(o *models.Overridable) string { return o.NextJBPDate }),
	flag("hasPlanograms", func(o *models.Overridable) *bool { return o.HasPlanograms }),
	text("planogramWrittenBy", func(o *models.Overridable) string { return o.PlanogramWrittenBy }),
	text("resetFrequency", func(o *models.Overridable) string { return o.ResetFrequency }),
	list("resetWindowMonths", func(o *models.Overridable) []string { return o.ResetWindowMonths }),
	list("affectedCategories", func(o *models.Overridable) []string { return o.AffectedCategories }),
	text("ecommerceMaturity", func(o *models.Overridable) string { return o.EcommerceMaturity }),
	text("ecommerceSalesPercent", func(o *models.Overridable) string { return o.EcommerceSalesPercent }),
	list("fulfillmentTypes", func(o *models.Overridable) []string { return o.FulfillmentTypes }),
	list("ecommercePartners", func(o *models.Overridable) []string { return o.EcommercePartners }),
	list("spiritsOutletsByState", func(o *models.Overridable) []string { return o.SpiritsOutletsByState }),
}

var byName = func() map[string]Attribute {
	m := make(map[string]Attribute, len(attributes))
	for _, a := range attributes {
		m[a.Name] = a
	}
	return m
}()

// Attributes returns the overridable attributes in reporting order.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributes))
	copy(out, attributes)
	return out
}

// Lookup finds an attribute by its document name.
func Lookup(name string) (Attribute, bool) {
	a, ok := byName[name]
	return a, ok
}

// BannerFor returns the contact's banner if it resolves inside the contact's
// own account. Cross-account or unknown banner ids resolve to nil.
func BannerFor(contact *models.Contact, account *models.Account) *models.BannerBuyingOffice {
	if contact == nil || account == nil || contact.AccountID != account.ID {
		return nil
	}
	return account.Banner(contact.BannerBuyingOfficeID)
}

// Resolve returns the effective value of attr for rows scoped to banner
// (which may be nil) under account. Unknown attributes resolve to an empty Text.
func Resolve(attr string, banner *models.BannerBuyingOffice, account *models.Account) Value {
	a, ok := byName[attr]
	if !ok {
		return Value{}
	}
	return a.resolve(banner, account)
}

// ResolveForContact resolves attr using the contact's validated banner.
func ResolveForContact(attr string, contact *models.Contact, account *models.Account) Value {
	return Resolve(attr, BannerFor(contact, account), account)
}

func (a Attribute) resolve(banner *models.BannerBuyingOffice, account *models.Account) Value {
	if banner != nil {
		if v := a.get(&banner.Overridable); !v.IsEmpty() {
			return v
		}
	}
	if account == nil {
		return Value{Kind: a.Kind}
	}
	return a.get(&account.Overridable)
}

// Effective resolves every overridable attribute at once.
func Effective(banner *models.BannerBuyingOffice, account *models.Account) models.Overridable {
	var out models.Overridable
	v := func(name string) Value { return byName[name].resolve(banner, account) }

	out.Channel = v("channel").Text
	out.Footprint = v("footprint").Text
	out.OperatingStates = v("operatingStates").List
	out.IsJBP = v("isJBP").Flag
	out.LastJBPDate = v("lastJBPDate").Text
	out.NextJBPDate = v("nextJBPDate").Text
	out.HasPlanograms = v("hasPlanograms").Flag
	out.PlanogramWrittenBy = v("planogramWrittenBy").Text
	out.ResetFrequency = v("resetFrequency").Text
	out.ResetWindowMonths = v("resetWindowMonths").List
	out.AffectedCategories = v("affectedCategories").List
	out.EcommerceMaturity = v("ecommerceMaturity").Text
	out.EcommerceSalesPercent = v("ecommerceSalesPercent").Text
	out.FulfillmentTypes = v("fulfillmentTypes").List
	out.EcommercePartners = v("ecommercePartners").List
	out.SpiritsOutletsByState = v("spiritsOutletsByState").List
	return out
}
