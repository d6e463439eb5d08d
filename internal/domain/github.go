package domain

// GitHubActivity is the activity summary used for the github component.
type GitHubActivity struct {
	Commits       int `json:"commits"`
	PullRequests  int `json:"pullRequests"`
	Issues        int `json:"issues"`
	Contributions int `json:"contributions"`
	Repositories  int `json:"repositories"`
	Stars         int `json:"stars"`
	Followers     int `json:"followers"`
	AccountAge    int `json:"accountAge"` // days
}

// GitHubConnection links a wallet to a GitHub account.
// Corresponds to github_connections table in PostgreSQL.
type GitHubConnection struct {
	Address     string         `json:"address"` // lowercase 0x wallet address, PRIMARY KEY
	Username    string         `json:"username"`
	Activity    GitHubActivity `json:"activity"`
	Connected   bool           `json:"connected"`
	LastUpdated int64          `json:"lastUpdated"` // Unix ms
}
