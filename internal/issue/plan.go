package issue

// Plan maps each file to its detected issues in detection order. File order is
// insertion order, so two runs over the same audit output produce the same
// iteration sequence. A file present in the plan always has at least one issue;
// an empty plan means no issues were found.
type Plan struct {
	files  []string
	byFile map[string][]Issue
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{byFile: make(map[string][]Issue)}
}

// Add appends issues for a file, creating the file entry on first use.
// Calls with no issues are ignored so the at-least-one-issue invariant holds.
func (p *Plan) Add(file string, issues ...Issue) {
	if len(issues) == 0 {
		return
	}
	if _, ok := p.byFile[file]; !ok {
		p.files = append(p.files, file)
	}
	for _, iss := range issues {
		iss.File = file
		p.byFile[file] = append(p.byFile[file], iss)
	}
}

// Files returns the file identifiers in insertion order.
func (p *Plan) Files() []string {
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

// Issues returns a copy of the issues recorded for file.
func (p *Plan) Issues(file string) []Issue {
	src := p.byFile[file]
	out := make([]Issue, len(src))
	copy(out, src)
	return out
}

// AllIssues returns every issue in file insertion order.
func (p *Plan) AllIssues() []Issue {
	var out []Issue
	for _, f := range p.files {
		out = append(out, p.byFile[f]...)
	}
	return out
}

// Empty reports whether the plan contains no issues.
func (p *Plan) Empty() bool {
	return p == nil || len(p.files) == 0
}

// FileCount returns the number of files with issues.
func (p *Plan) FileCount() int {
	if p == nil {
		return 0
	}
	return len(p.files)
}

// Total returns the total number of issues across all files.
func (p *Plan) Total() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, issues := range p.byFile {
		n += len(issues)
	}
	return n
}
