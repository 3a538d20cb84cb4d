package domain

// ColumnView describes one visible column of a rendered table together with
// its filter domain and current selection.
type ColumnView struct {
	Name     string   `json:"name"`
	Currency bool     `json:"currency"`
	Values   []string `json:"values"`
	Selected []string `json:"selected"`
	Filtered bool     `json:"filtered"`
}

// TableView is the presentation model of a filterable table. Rows hold the
// display strings aligned with Columns; Records keeps the underlying rows for
// exporters that want typed cells.
type TableView struct {
	Title         string             `json:"title,omitempty"`
	Columns       []ColumnView       `json:"columns"`
	Rows          [][]string         `json:"rows"`
	Totals        []string           `json:"totals,omitempty"`
	Sums          map[string]float64 `json:"sums,omitempty"`
	TotalRows     int                `json:"total_rows"`
	ShownRows     int                `json:"shown_rows"`
	Caption       string             `json:"caption"`
	FiltersActive bool               `json:"filters_active"`

	Records []Row `json:"-"`
}

// ColumnNames returns the visible column names in display order.
func (v *TableView) ColumnNames() []string {
	names := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		names[i] = c.Name
	}
	return names
}

// FilterPanel is the state of one master-dataset filter box.
type FilterPanel struct {
	Column      string   `json:"column"`
	Label       string   `json:"label"`
	Options     []string `json:"options"`
	Selected    []string `json:"selected"`
	AllSelected bool     `json:"all_selected"`
}

// Summary is one grouped level of the master report.
type Summary struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	GroupKeys []string       `json:"group_keys"`
	Groups    int            `json:"groups"`
	Conflicts map[string]int `json:"conflicts,omitempty"`
	View      TableView      `json:"view"`
}

// MasterReport is the full master-dataset output: filter panel plus the
// three progressively aggregated summaries.
type MasterReport struct {
	Policy       string        `json:"policy"`
	Filters      []FilterPanel `json:"filters"`
	TotalRows    int           `json:"total_rows"`
	FilteredRows int           `json:"filtered_rows"`
	Summaries    []Summary     `json:"summaries"`
}

// Summary returns the summary with the given id, or nil.
func (r *MasterReport) Summary(id string) *Summary {
	for i := range r.Summaries {
		if r.Summaries[i].ID == id {
			return &r.Summaries[i]
		}
	}
	return nil
}

// FileEntry is one item in the file catalog.
type FileEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Format      string `json:"format"`
	Master      bool   `json:"master"`
	Default     bool   `json:"default"`
}
