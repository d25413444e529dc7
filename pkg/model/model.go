package model

// Target is a single move or status-change instruction supplied through the
// "targets" input. A move target names a project and a section; a status
// target names an option of the task's "Status" custom field.
type Target struct {
	Project string `json:"project,omitempty"`
	Section string `json:"section,omitempty"`
	Status  string `json:"status,omitempty"`
}

// PullRequest is the slice of the CI event payload the actions need.
type PullRequest struct {
	Number  int
	Body    string
	HeadSHA string
	Owner   string
	Repo    string
}
