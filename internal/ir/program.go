package ir

// Program is one front-end dump: every class the front end resolved plus
// the points-to facts it computed over them.
type Program struct {
	Classes  []ClassDecl    `json:"classes"`
	PointsTo []PointsToFact `json:"points_to,omitempty"`
}

// ClassDecl declares one class or interface.
type ClassDecl struct {
	Name         string       `json:"name"`
	Super        string       `json:"super,omitempty"` // empty for the universal base
	Interfaces   []string     `json:"interfaces,omitempty"`
	Interface    bool         `json:"interface,omitempty"`
	Abstract     bool         `json:"abstract,omitempty"`
	Final        bool         `json:"final,omitempty"`
	Restrictions []string     `json:"restrictions,omitempty"` // policy names, declaration order
	Fields       []FieldDecl  `json:"fields,omitempty"`
	Methods      []MethodDecl `json:"methods,omitempty"`
	Source       string       `json:"source,omitempty"` // originating source file
}

// FieldDecl declares a field.
type FieldDecl struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Static    bool   `json:"static,omitempty"`
	Inlinable bool   `json:"inlinable,omitempty"` // may be embedded by value
}

// MethodDecl declares a method. Units and Locals are present iff Concrete.
type MethodDecl struct {
	Name     string      `json:"name"`
	Params   []string    `json:"params,omitempty"`
	Return   string      `json:"return"`
	Static   bool        `json:"static,omitempty"`
	Concrete bool        `json:"concrete,omitempty"`
	Locals   []LocalDecl `json:"locals,omitempty"`
	Units    []Unit      `json:"units,omitempty"`
	Traps    []Trap      `json:"traps,omitempty"`
}

// LocalDecl declares a method local.
type LocalDecl struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	ByValue bool   `json:"by_value,omitempty"` // front-end hint, honored only with object inlining
}

// Trap is an exception range. Only Handler matters to lowerc: the handler
// unit becomes a label target.
type Trap struct {
	Begin     int    `json:"begin"`
	End       int    `json:"end"`
	Handler   int    `json:"handler"`
	Exception string `json:"exception,omitempty"`
}

// PointsToFact answers "what concrete types can this local have here".
// Method is the owning method's key (see MethodKey).
type PointsToFact struct {
	Method string   `json:"method"`
	Local  string   `json:"local"`
	Types  []string `json:"types"`
}

// MethodKey is the key front ends use to refer to a method in points-to
// facts: "<class>.<name>(<param>,<param>)".
func MethodKey(class, name string, params []string) string {
	key := class + "." + name + "("
	for i, p := range params {
		if i > 0 {
			key += ","
		}
		key += p
	}
	return key + ")"
}

// FindClass returns the declaration named name, or nil.
func (p *Program) FindClass(name string) *ClassDecl {
	for i := range p.Classes {
		if p.Classes[i].Name == name {
			return &p.Classes[i]
		}
	}
	return nil
}
