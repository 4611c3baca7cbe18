package model

// ContractReport is the contract-analysis payload of the rug oracle.
type ContractReport struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings"`
	Deployer string   `json:"deployer,omitempty"`
}

// SupplyReport is the supply payload of the rug oracle.
type SupplyReport struct {
	TotalSupply         float64  `json:"total_supply"`
	CirculatingSupply   float64  `json:"circulating_supply"`
	TopHolders          []Holder `json:"top_holders"`
	HolderConcentration float64  `json:"holder_concentration"`
}

// Holder is one entry of a token's top-holder list.
type Holder struct {
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`
}

// RugVerdict is the outcome of the rug/supply-bundling check.
type RugVerdict struct {
	IsSafe          bool          `json:"is_safe"`
	Status          string        `json:"status"`
	Warnings        []string      `json:"warnings"`
	IsSupplyBundled bool          `json:"is_supply_bundled"`
	Deployer        string        `json:"deployer,omitempty"`
	Supply          *SupplyReport `json:"supply_analysis,omitempty"`
}

// VolumeReport is the payload of the volume oracle.
type VolumeReport struct {
	RealVolumeRatio float64  `json:"realVolumeRatio"`
	Flags           []string `json:"flags"`
}

const (
	VolumeSourceLocal          = "local"
	VolumeSourcePocketUniverse = "pocket_universe"
)

// VolumeVerdict is the outcome of the volume legitimacy check.
type VolumeVerdict struct {
	IsLegitimate        bool     `json:"is_legitimate"`
	Flags               []string `json:"flags"`
	RealVolumeRatio     float64  `json:"real_volume_ratio"`
	UniqueTraders       int      `json:"unique_traders"`
	WashTradePercentage float64  `json:"wash_trade_percentage"`
	SuspiciousPatterns  []string `json:"suspicious_patterns,omitempty"`
	Source              string   `json:"source"`
}
