package model

// LanguageVersion keys a cost model.
type LanguageVersion string

const (
	PlutusV1 LanguageVersion = "PlutusV1"
	PlutusV2 LanguageVersion = "PlutusV2"
)

// CostModelsRecord maps a script language to its fixed-order coefficients.
type CostModelsRecord map[LanguageVersion][]int64

// ProtocolParamUpdateRecord is the union of every era's updatable
// parameters. A nil field was not proposed.
type ProtocolParamUpdateRecord struct {
	MinfeeA                      *uint32               `json:"minfee_a"`
	MinfeeB                      *uint32               `json:"minfee_b"`
	MaxBlockBodySize             *uint32               `json:"max_block_body_size"`
	MaxTransactionSize           *uint32               `json:"max_transaction_size"`
	MaxBlockHeaderSize           *uint32               `json:"max_block_header_size"`
	KeyDeposit                   *uint64               `json:"key_deposit"`
	PoolDeposit                  *uint64               `json:"pool_deposit"`
	MaximumEpoch                 *uint64               `json:"maximum_epoch"`
	DesiredNumberOfStakePools    *uint32               `json:"desired_number_of_stake_pools"`
	PoolPledgeInfluence          *RationalNumberRecord `json:"pool_pledge_influence"`
	ExpansionRate                *UnitIntervalRecord   `json:"expansion_rate"`
	TreasuryGrowthRate           *UnitIntervalRecord   `json:"treasury_growth_rate"`
	DecentralizationConstant     *UnitIntervalRecord   `json:"decentralization_constant"`
	ExtraEntropy                 *NonceRecord          `json:"extra_entropy"`
	ProtocolVersion              *[2]uint64            `json:"protocol_version"`
	MinPoolCost                  *uint64               `json:"min_pool_cost"`
	AdaPerUtxoByte               *uint64               `json:"ada_per_utxo_byte"`
	CostModelsForScriptLanguages CostModelsRecord      `json:"cost_models_for_script_languages"`
	ExecutionCosts               *ExUnitPricesRecord   `json:"execution_costs"`
	MaxTxExUnits                 *ExUnitsRecord        `json:"max_tx_ex_units"`
	MaxBlockExUnits              *ExUnitsRecord        `json:"max_block_ex_units"`
	MaxValueSize                 *uint32               `json:"max_value_size"`
	CollateralPercentage         *uint32               `json:"collateral_percentage"`
	MaxCollateralInputs          *uint32               `json:"max_collateral_inputs"`
}

// UpdateRecord is a protocol update proposal keyed by hex genesis hash.
type UpdateRecord struct {
	ProposedProtocolParameterUpdates map[string]ProtocolParamUpdateRecord `json:"proposed_protocol_parameter_updates"`
	Epoch                            uint64                               `json:"epoch"`
}
