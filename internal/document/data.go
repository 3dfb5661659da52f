package document

// DataDecl is one <data> declaration. Precedence when more than one source
// is present: Expr > Content > Src (spec.md SS3).
type DataDecl struct {
	ID      string
	Expr    string
	Content any
	Src     string
}

// HasExpr/HasContent/HasSrc let the initializer in internal/interpreter pick
// the highest-precedence source without re-deriving "present" rules.
func (d DataDecl) HasExpr() bool    { return d.Expr != "" }
func (d DataDecl) HasContent() bool { return d.Content != nil }
func (d DataDecl) HasSrc() bool     { return d.Src != "" }
