// Package column implements ColumnInfo and ColumnList, ClickHouse's
// typed column descriptors and the textual "columns format version"
// header they round-trip through.
package column

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
)

// Info describes a single column: its name, type, nullability, and the
// type-specific attributes (precision/scale/timezone) that apply to it.
// Index is resolved at most once, by named-query column remapping; -1
// means unresolved.
type Info struct {
	Name         string
	Type         chtype.DataType
	Nullable     bool
	Precision    int
	Scale        int
	Timezone     string
	DefaultValue any
	index        int
	indexSet     bool
}

// New builds a column with defaulted precision/scale for its type.
func New(name string, t chtype.DataType, nullable bool) Info {
	p, s := chtype.DefaultPrecisionScale(t)
	if fixed, ok := chtype.FixedDecimalPrecision(t); ok {
		p = fixed
	}
	if chtype.IsDecimal(t) {
		s = chtype.ClampScale(s, p)
	}
	return Info{Name: name, Type: t, Nullable: nullable, Precision: p, Scale: s, index: -1}
}

// NewWithPrecision builds a column with explicit precision/scale, clamped
// per the type rules.
func NewWithPrecision(name string, t chtype.DataType, nullable bool, precision, scale int) Info {
	if fixed, ok := chtype.FixedDecimalPrecision(t); ok {
		precision = fixed
	}
	return Info{
		Name: name, Type: t, Nullable: nullable,
		Precision: precision, Scale: chtype.ClampScale(scale, precision),
		index: -1,
	}
}

// Index returns the resolved position, or -1 if unresolved.
func (c Info) Index() int { return c.index }

// IsIndexed reports whether SetIndex has been called.
func (c Info) IsIndexed() bool { return c.indexSet }

// SetIndex resolves the column's position exactly once. Calling it twice,
// or with a negative value, is a programming error.
func (c *Info) SetIndex(i int) error {
	if c.indexSet {
		return fmt.Errorf("column: index of %q already set to %d", c.Name, c.index)
	}
	if i < 0 {
		return fmt.Errorf("column: negative index %d for %q", i, c.Name)
	}
	c.index = i
	c.indexSet = true
	return nil
}

// TypeSpec renders the type portion (without the identifier) as ClickHouse
// grammar, e.g. "Nullable(Decimal(10,3))".
func (c Info) TypeSpec() string {
	spec := chtype.Spec{
		Type: c.Type, Nullable: c.Nullable,
		Precision: c.Precision, Scale: c.Scale, Timezone: c.Timezone,
	}
	return spec.String()
}

// String renders "`name` TypeSpec".
func (c Info) String() string {
	return fmt.Sprintf("%s %s", quoteIdentifier(c.Name), c.TypeSpec())
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func unquoteIdentifier(s string) (name string, rest string, err error) {
	if len(s) == 0 {
		return "", s, fmt.Errorf("column: empty identifier")
	}
	quote := byte(0)
	if s[0] == '`' || s[0] == '"' {
		quote = s[0]
	}
	if quote == 0 {
		// bare identifier up to whitespace
		idx := strings.IndexByte(s, ' ')
		if idx < 0 {
			return s, "", nil
		}
		return s[:idx], s[idx+1:], nil
	}

	var b strings.Builder
	i := 1
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			i++
			break
		}
		b.WriteByte(s[i])
		i++
	}
	rest = strings.TrimPrefix(s[i:], " ")
	return b.String(), rest, nil
}

// ParseColumn parses a single "`name` TypeSpec" declaration.
func ParseColumn(decl string) (Info, error) {
	decl = strings.TrimSpace(decl)
	name, rest, err := unquoteIdentifier(decl)
	if err != nil {
		return Info{}, err
	}
	rest = strings.TrimSpace(rest)
	spec, err := chtype.ParseSpec(rest)
	if err != nil {
		return Info{}, fmt.Errorf("column: parsing type of %q: %w", name, err)
	}
	return Info{
		Name: name, Type: spec.Type, Nullable: spec.Nullable,
		Precision: spec.Precision, Scale: spec.Scale, Timezone: spec.Timezone,
		index: -1,
	}, nil
}

// List is an ordered sequence of columns plus a format version, matching
// ClickHouse's "columns format version: N" textual header.
type List struct {
	Version int
	Columns []Info
}

// DefaultColumns is the fixed 5-column debug-echo schema, all nullable
// String, matching the five values datasource.WriteDebugInfo writes per row.
func DefaultColumns() List {
	mk := func(name string) Info { return New(name, chtype.String, true) }
	return List{Version: 1, Columns: []Info{
		mk("datasource"), mk("type"), mk("definition"), mk("query"), mk("parameters"),
	}}
}

// Size returns the number of columns.
func (l List) Size() int { return len(l.Columns) }

// Column returns the i-th column.
func (l List) Column(i int) Info { return l.Columns[i] }

// ContainsColumn reports whether a column of the given name exists.
func (l List) ContainsColumn(name string) bool {
	for _, c := range l.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the named column, or -1.
func (l List) IndexOf(name string) int {
	for i, c := range l.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Append returns a new List with extra columns appended.
func (l List) Append(extra ...Info) List {
	out := List{Version: l.Version, Columns: make([]Info, 0, len(l.Columns)+len(extra))}
	out.Columns = append(out.Columns, l.Columns...)
	out.Columns = append(out.Columns, extra...)
	return out
}

// Prepend returns a new List with extra columns prepended.
func (l List) Prepend(extra ...Info) List {
	out := List{Version: l.Version, Columns: make([]Info, 0, len(l.Columns)+len(extra))}
	out.Columns = append(out.Columns, extra...)
	out.Columns = append(out.Columns, l.Columns...)
	return out
}

// UpdateValues copies default values from same-position entries in ref
// into a copy of l, matching ClickHouseColumnList.updateValues.
func (l List) UpdateValues(ref List) List {
	out := List{Version: l.Version, Columns: make([]Info, len(l.Columns))}
	copy(out.Columns, l.Columns)
	for i := range out.Columns {
		if i < len(ref.Columns) {
			out.Columns[i].DefaultValue = ref.Columns[i].DefaultValue
		}
	}
	return out
}

// String renders the full "columns format version: N\n<N> columns:\n..." header.
func (l List) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "columns format version: %d\n", versionOrDefault(l.Version))
	fmt.Fprintf(&b, "%d columns:\n", len(l.Columns))
	for _, c := range l.Columns {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func versionOrDefault(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}

// ParseList parses a full columns header per §4.2's contract:
// ParseList(l.String()) == l for any well-formed list.
func ParseList(header string) (List, error) {
	lines := strings.Split(strings.TrimRight(header, "\n"), "\n")
	if len(lines) < 2 {
		return List{}, fmt.Errorf("column: header too short")
	}

	const versionPrefix = "columns format version: "
	if !strings.HasPrefix(lines[0], versionPrefix) {
		return List{}, fmt.Errorf("column: missing %q line", versionPrefix)
	}
	version, err := strconv.Atoi(strings.TrimSpace(lines[0][len(versionPrefix):]))
	if err != nil {
		return List{}, fmt.Errorf("column: bad version: %w", err)
	}

	countLine := lines[1]
	const countSuffix = " columns:"
	if !strings.HasSuffix(countLine, countSuffix) {
		return List{}, fmt.Errorf("column: missing %q suffix", countSuffix)
	}
	count, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(countLine, countSuffix)))
	if err != nil {
		return List{}, fmt.Errorf("column: bad column count: %w", err)
	}

	cols := make([]Info, 0, count)
	for i := 2; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		c, err := ParseColumn(lines[i])
		if err != nil {
			return List{}, err
		}
		cols = append(cols, c)
	}
	if len(cols) != count {
		return List{}, fmt.Errorf("column: header declared %d columns, found %d", count, len(cols))
	}

	return List{Version: version, Columns: cols}, nil
}
