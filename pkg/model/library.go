package model

// LibraryDownloads lists the files a library can provide.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// RuleAction is the verdict of a library rule.
type RuleAction string

// Rule actions.
const (
	RuleAllow    RuleAction = "allow"
	RuleDisallow RuleAction = "disallow"
)

// RuleOS restricts a rule to one OS, named the upstream way (linux, windows, osx).
type RuleOS struct {
	Name string `json:"name,omitempty"`
}

// Rule conditionally allows or disallows a library.
type Rule struct {
	Action RuleAction `json:"action"`
	OS     *RuleOS    `json:"os,omitempty"`
}

// LibraryEntry is one dependency jar, possibly with per-OS native classifiers.
type LibraryEntry struct {
	Name      string            `json:"name"`
	Downloads LibraryDownloads  `json:"downloads"`
	Natives   map[string]string `json:"natives,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
}

// Allows evaluates the library rules for manifestOS. A library without rules
// is always allowed; otherwise it starts disallowed and the last matching
// rule wins.
func (l *LibraryEntry) Allows(manifestOS string) bool {
	if len(l.Rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range l.Rules {
		if r.OS != nil && r.OS.Name != "" && r.OS.Name != manifestOS {
			continue
		}
		allowed = r.Action == RuleAllow
	}
	return allowed
}

// ResolvedLibrary is the single download target selected for a library.
type ResolvedLibrary struct {
	Name       string
	Artifact   Artifact
	Native     bool
	Classifier string
}
