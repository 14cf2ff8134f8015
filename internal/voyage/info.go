package voyage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Vessel holds the particulars of the ship under assessment.
type Vessel struct {
	Name      string  `json:"name,omitempty"`
	IMO       string  `json:"imo,omitempty"`
	Type      string  `json:"type,omitempty"`
	DWT       float64 `json:"dwt_mt,omitempty"`
	GRT       float64 `json:"grt,omitempty"`
	YearBuilt int     `json:"year_built,omitempty"`
}

// Passage identifies the leg the noon reports cover.
type Passage struct {
	VoyageNo string    `json:"voyage_no,omitempty"`
	FromPort string    `json:"from_port,omitempty"`
	ToPort   string    `json:"to_port,omitempty"`
	COSP     time.Time `json:"cosp,omitzero"`
	EOSP     time.Time `json:"eosp,omitzero"`
}

// Charter names the contract the warranted figures come from.
type Charter struct {
	Charterer string    `json:"charterer,omitempty"`
	CPDate    time.Time `json:"cp_date,omitzero"`
}

// Info labels a calculation run. It never changes the figures.
type Info struct {
	Vessel  Vessel  `json:"vessel"`
	Passage Passage `json:"passage"`
	Charter Charter `json:"charter"`
}

const earliestYearBuilt = 1900

// Validate rejects particulars that cannot describe a real voyage.
func (i Info) Validate() error {
	if i.Vessel.DWT < 0 {
		return fmt.Errorf("vessel dwt must not be negative, got %v", i.Vessel.DWT)
	}
	if i.Vessel.GRT < 0 {
		return fmt.Errorf("vessel grt must not be negative, got %v", i.Vessel.GRT)
	}
	if i.Vessel.YearBuilt != 0 && i.Vessel.YearBuilt < earliestYearBuilt {
		return fmt.Errorf("vessel year built %d is before %d", i.Vessel.YearBuilt, earliestYearBuilt)
	}
	p := i.Passage
	if !p.COSP.IsZero() && !p.EOSP.IsZero() && p.EOSP.Before(p.COSP) {
		return fmt.Errorf("eosp %s is before cosp %s", p.EOSP.Format(time.RFC3339), p.COSP.Format(time.RFC3339))
	}
	return nil
}

// Title is a one-line label such as "MV Ocean Carrier V2024-01 Rotterdam - Singapore".
func (i Info) Title() string {
	var parts []string
	if i.Vessel.Name != "" {
		parts = append(parts, i.Vessel.Name)
	}
	if i.Passage.VoyageNo != "" {
		parts = append(parts, i.Passage.VoyageNo)
	}
	switch from, to := i.Passage.FromPort, i.Passage.ToPort; {
	case from != "" && to != "":
		parts = append(parts, from+" - "+to)
	case from != "":
		parts = append(parts, "from "+from)
	case to != "":
		parts = append(parts, "to "+to)
	}
	return strings.Join(parts, " ")
}

// Field is one labelled particular.
type Field struct {
	Key   string
	Label string
	Value string
}

// Fields lists the particulars that are set, in display order.
func (i Info) Fields() []Field {
	var out []Field
	add := func(key, label, value string) {
		if value != "" {
			out = append(out, Field{Key: key, Label: label, Value: value})
		}
	}
	number := func(v float64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	instant := func(t time.Time, layout string) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(layout)
	}

	add("vessel_name", "Vessel Name", i.Vessel.Name)
	add("imo", "IMO Number", i.Vessel.IMO)
	add("vessel_type", "Vessel Type", i.Vessel.Type)
	add("dwt_mt", "Deadweight (MT)", number(i.Vessel.DWT))
	add("grt", "Gross Tonnage", number(i.Vessel.GRT))
	if i.Vessel.YearBuilt != 0 {
		add("year_built", "Year Built", strconv.Itoa(i.Vessel.YearBuilt))
	}
	add("voyage_no", "Voyage Number", i.Passage.VoyageNo)
	add("from_port", "From Port", i.Passage.FromPort)
	add("to_port", "To Port", i.Passage.ToPort)
	add("cosp", "COSP (UTC)", instant(i.Passage.COSP, "2006-01-02 15:04"))
	add("eosp", "EOSP (UTC)", instant(i.Passage.EOSP, "2006-01-02 15:04"))
	add("charterer", "Charterer", i.Charter.Charterer)
	add("cp_date", "CP Date", instant(i.Charter.CPDate, "2006-01-02"))
	return out
}

// Outside returns the rows of timestamped events that fall before COSP or
// after EOSP. Unset bounds are open.
func (p Passage) Outside(events []Event) []int {
	if p.COSP.IsZero() && p.EOSP.IsZero() {
		return nil
	}
	var rows []int
	for _, e := range events {
		if e.Timestamp == nil {
			continue
		}
		ts := *e.Timestamp
		if (!p.COSP.IsZero() && ts.Before(p.COSP)) || (!p.EOSP.IsZero() && ts.After(p.EOSP)) {
			rows = append(rows, e.Row)
		}
	}
	return rows
}
