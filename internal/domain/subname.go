package domain

// Subname is an off-chain ENS subname record under the service's parent domain.
// Corresponds to ens_subnames table in PostgreSQL.
type Subname struct {
	Name      string `json:"name"`      // full name, e.g. alice.omnirep.eth, PRIMARY KEY
	Label     string `json:"label"`     // alice
	Node      string `json:"node"`      // 0x namehash of Name
	Owner     string `json:"owner"`     // lowercase 0x wallet address
	DID       string `json:"did"`       // text record "did"
	Expiry    int64  `json:"expiry"`    // Unix seconds
	CreatedAt int64  `json:"createdAt"` // Unix ms
}
