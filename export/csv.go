// ABOUTME: CSV import and export for accounts and reporting rows
// ABOUTME: Multi-valued fields join with "; " and nested objects are JSON-encoded
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/harperreed/bannerbook/flatten"
	"github.com/harperreed/bannerbook/models"
)

// MultiSeparator joins list values in CSV cells.
const MultiSeparator = "; "

func JoinMulti(values []string) string {
	return strings.Join(values, MultiSeparator)
}

// SplitMulti is the inverse of JoinMulti. Surrounding whitespace is trimmed
// and empty entries are dropped.
func SplitMulti(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type column struct {
	name string
	get  func(a *models.Account) (string, error)
	set  func(a *models.Account, cell string) error
}

func textCol(name string, field func(a *models.Account) *string) column {
	return column{
		name: name,
		get:  func(a *models.Account) (string, error) { return *field(a), nil },
		set:  func(a *models.Account, cell string) error { *field(a) = cell; return nil },
	}
}

func listCol(name string, field func(a *models.Account) *[]string) column {
	return column{
		name: name,
		get:  func(a *models.Account) (string, error) { return JoinMulti(*field(a)), nil },
		set:  func(a *models.Account, cell string) error { *field(a) = SplitMulti(cell); return nil },
	}
}

func flagCol(name string, field func(a *models.Account) **bool) column {
	return column{
		name: name,
		get: func(a *models.Account) (string, error) {
			if v := *field(a); v != nil {
				return strconv.FormatBool(*v), nil
			}
			return "", nil
		},
		set: func(a *models.Account, cell string) error {
			v, err := ParseFlag(cell)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(a) = v
			return nil
		},
	}
}

func jsonCol[T any](name string, field func(a *models.Account) *T) column {
	return column{
		name: name,
		get: func(a *models.Account) (string, error) {
			v := reflect.ValueOf(*field(a))
			if v.Len() == 0 {
				return "", nil
			}
			data, err := json.Marshal(*field(a))
			return string(data), err
		},
		set: func(a *models.Account, cell string) error {
			if strings.TrimSpace(cell) == "" {
				return nil
			}
			if err := json.Unmarshal([]byte(cell), field(a)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		},
	}
}

// ParseFlag reads a presence-aware yes/no value. Blank means unset.
func ParseFlag(cell string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "":
		return nil, nil
	case "true", "yes", "y", "1":
		v := true
		return &v, nil
	case "false", "no", "n", "0":
		v := false
		return &v, nil
	}
	return nil, fmt.Errorf("invalid flag value %q", cell)
}

var accountColumns = []column{
	textCol("id", func(a *models.Account) *string { return &a.ID }),
	textCol("name", func(a *models.Account) *string { return &a.Name }),
	textCol("hqLocation", func(a *models.Account) *string { return &a.HQLocation }),
	textCol("website", func(a *models.Account) *string { return &a.Website }),
	textCol("phone", func(a *models.Account) *string { return &a.Phone }),
	textCol("accountOwner", func(a *models.Account) *string { return &a.AccountOwner }),
	textCol("influenceAssortmentShelf", func(a *models.Account) *string { return &a.InfluenceAssortmentShelf }),
	textCol("influencePricePromo", func(a *models.Account) *string { return &a.InfluencePricePromo }),
	jsonCol("salesRoles", func(a *models.Account) *map[string]string { return &a.SalesRoles }),
	jsonCol("supportRoles", func(a *models.Account) *map[string]string { return &a.SupportRoles }),
	textCol("channel", func(a *models.Account) *string { return &a.Channel }),
	textCol("footprint", func(a *models.Account) *string { return &a.Footprint }),
	listCol("operatingStates", func(a *models.Account) *[]string { return &a.OperatingStates }),
	flagCol("isJBP", func(a *models.Account) **bool { return &a.IsJBP }),
	textCol("lastJBPDate", func(a *models.Account) *string { return &a.LastJBPDate }),
	textCol("nextJBPDate", func(a *models.Account) *string { return &a.NextJBPDate }),
	flagCol("hasPlanograms", func(a *models.Account) **bool { return &a.HasPlanograms }),
	textCol("planogramWrittenBy", func(a *models.Account) *string { return &a.PlanogramWrittenBy }),
	textCol("resetFrequency", func(a *models.Account) *string { return &a.ResetFrequency }),
	listCol("resetWindowMonths", func(a *models.Account) *[]string { return &a.ResetWindowMonths }),
	listCol("affectedCategories", func(a *models.Account) *[]string { return &a.AffectedCategories }),
	textCol("ecommerceMaturity", func(a *models.Account) *string { return &a.EcommerceMaturity }),
	textCol("ecommerceSalesPercent", func(a *models.Account) *string { return &a.EcommerceSalesPercent }),
	listCol("fulfillmentTypes", func(a *models.Account) *[]string { return &a.FulfillmentTypes }),
	listCol("ecommercePartners", func(a *models.Account) *[]string { return &a.EcommercePartners }),
	listCol("spiritsOutletsByState", func(a *models.Account) *[]string { return &a.SpiritsOutletsByState }),
	jsonCol("bannerBuyingOffices", func(a *models.Account) *[]models.BannerBuyingOffice { return &a.BannerBuyingOffices }),
	jsonCol("customerEvents", func(a *models.Account) *[]models.CustomerEvent { return &a.CustomerEvents }),
	textCol("notes", func(a *models.Account) *string { return &a.Notes }),
}

// WriteAccounts writes one CSV row per account with a header.
func WriteAccounts(w io.Writer, accounts []models.Account) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(accountColumns))
	for i, c := range accountColumns {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range accounts {
		record := make([]string, len(accountColumns))
		for j, c := range accountColumns {
			cell, err := c.get(&accounts[i])
			if err != nil {
				return fmt.Errorf("failed to encode account %s: %w", accounts[i].ID, err)
			}
			record[j] = cell
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAccounts parses a file written by WriteAccounts. Columns are matched by
// header name; unknown columns are ignored and missing ones stay empty.
func ReadAccounts(r io.Reader) ([]models.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	byName := make(map[string]column, len(accountColumns))
	for _, c := range accountColumns {
		byName[c.name] = c
	}

	var accounts []models.Account
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var a models.Account
		for i, name := range header {
			c, ok := byName[strings.TrimSpace(name)]
			if !ok || i >= len(record) {
				continue
			}
			if err := c.set(&a, record[i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// WriteRows flattens accounts and contacts and writes the rows as CSV, with
// list values joined by MultiSeparator.
func WriteRows(w io.Writer, accounts []models.Account, contacts []models.Contact) error {
	rows := flatten.Flatten(accounts, contacts, flatten.WithSeparator(MultiSeparator))

	t := reflect.TypeOf(flatten.CombinedRow{})
	header := make([]string, t.NumField())
	for i := range header {
		header[i] = strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		v := reflect.ValueOf(row)
		record := make([]string, v.NumField())
		for i := range record {
			record[i] = cell(v.Field(i))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return flatten.YesNo(boolPtr(v.Bool()))
	}
	return fmt.Sprint(v.Interface())
}

func boolPtr(b bool) *bool { return &b }
