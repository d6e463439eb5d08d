package domain

// DefaultLastActiveDays is used when the caller does not know when the
// wallet was last active. Large enough to earn no recency bonus.
const DefaultLastActiveDays = 999

// SocialSignals holds social reach counters. Zero values are neutral.
type SocialSignals struct {
	TwitterFollowers    int `json:"twitterFollowers"`
	LinkedInConnections int `json:"linkedinConnections"`
	DiscordRoles        int `json:"discordRoles"`
	VerifiedAccounts    int `json:"verifiedAccounts"`
}

// IdentitySignals holds identity verification flags. Zero values are neutral.
type IdentitySignals struct {
	HasENS          bool `json:"hasENS"`
	ENSAge          int  `json:"ensAge"` // days
	Verified2FA     bool `json:"verified2FA"`
	KYCVerified     bool `json:"kycVerified"`
	ProfileComplete bool `json:"profileComplete"`
}

// ActivitySignals holds recent engagement data.
type ActivitySignals struct {
	RecentTransactions int  `json:"recentTransactions"` // last 30 days
	PlatformEngagement int  `json:"platformEngagement"`
	LastActive         *int `json:"lastActive,omitempty"` // days ago, nil = DefaultLastActiveDays
}

// LastActiveDays returns LastActive or DefaultLastActiveDays when unset.
func (a ActivitySignals) LastActiveDays() int {
	if a.LastActive == nil {
		return DefaultLastActiveDays
	}
	return *a.LastActive
}

// SecuritySignals holds security practice flags.
// RegularActivity and NoSuspiciousActivity default to true when nil:
// a wallet is assumed clean until a detector says otherwise.
type SecuritySignals struct {
	MultiSigUsage        bool  `json:"multiSigUsage"`
	HardwareWallet       bool  `json:"hardwareWallet"`
	RegularActivity      *bool `json:"regularActivity,omitempty"`
	NoSuspiciousActivity *bool `json:"noSuspiciousActivity,omitempty"`
}

// HasRegularActivity resolves RegularActivity with its default.
func (s SecuritySignals) HasRegularActivity() bool {
	return s.RegularActivity == nil || *s.RegularActivity
}

// IsClean resolves NoSuspiciousActivity with its default.
func (s SecuritySignals) IsClean() bool {
	return s.NoSuspiciousActivity == nil || *s.NoSuspiciousActivity
}

// Signals bundles the optional scoring inputs. Nil members score with
// their neutral defaults.
type Signals struct {
	Social   *SocialSignals   `json:"social,omitempty"`
	Identity *IdentitySignals `json:"identity,omitempty"`
	Activity *ActivitySignals `json:"activity,omitempty"`
	Security *SecuritySignals `json:"security,omitempty"`

	// GitHub overrides the github component when set. Filled from the
	// stored GitHub connection, never from request bodies.
	GitHub *GitHubActivity `json:"-"`
}
