// Package config defines the runtime configuration for the SDK, including
// the target network, RPC endpoint, protocol contract addresses, off-chain
// service URLs, storage gateways and operation timeouts. It also provides
// validation and defaulting helpers, and a viper-based file/env loader.
package config

import (
	"errors"
	"time"
)

// Config holds all SDK settings required to initialize blockchain and
// off-chain service clients. Use Validate to fill implicit defaults and to
// check for required fields.
type Config struct {
	// Network selects the target chain (chain ID and human-readable name).
	Network Network `json:"network" yaml:"network" mapstructure:"network"`
	// RPCAddr is the Ethereum RPC/WS endpoint URL (required).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr" mapstructure:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA private key used for signed
	// operations (optional for read-only usage).
	PrivateKey string `json:"private_key" yaml:"private_key" mapstructure:"private_key"`
	// OrderbookURL is the base URL of the off-chain orderbook service.
	OrderbookURL string `json:"orderbook_url" yaml:"orderbook_url" mapstructure:"orderbook_url"`
	// SubgraphURL is the GraphQL endpoint of the protocol subgraph.
	SubgraphURL string `json:"subgraph_url" yaml:"subgraph_url" mapstructure:"subgraph_url"`
	// IpfsURL is the HTTP API endpoint of the IPFS node used to read
	// credit-batch metadata.
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url" mapstructure:"ipfs_url"`
	// IpfsGatewayURL is the HTTP gateway used as a fallback for IPFS content.
	IpfsGatewayURL string `json:"ipfs_gateway_url" yaml:"ipfs_gateway_url" mapstructure:"ipfs_gateway_url"`
	// Contracts is the protocol address book for the selected network.
	// Leave empty to use the built-in addresses for known networks.
	Contracts Contracts `json:"contracts" yaml:"contracts" mapstructure:"contracts"`
	// StableTokenDecimals is the decimals of the quote stable token.
	StableTokenDecimals int32 `json:"stable_token_decimals" yaml:"stable_token_decimals" mapstructure:"stable_token_decimals"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts" mapstructure:"timeouts"`
}

// Network describes a blockchain network (chain ID and name). ChainID is used
// for EIP-155 and EIP-712 signing; Name is informational.
type Network struct {
	ChainID int64  `json:"chain_id" yaml:"chain_id" mapstructure:"chain_id"`
	Name    string `json:"network_name" yaml:"network_name" mapstructure:"network_name"`
}

// Polygon is the predefined Network for Polygon PoS mainnet.
var Polygon = Network{
	ChainID: 137,
	Name:    "polygon",
}

// Mumbai is the predefined Network for the Polygon Mumbai testnet.
var Mumbai = Network{
	ChainID: 80001,
	Name:    "mumbai",
}

// Contracts is the immutable protocol address book for one network. All
// addresses are hex strings; they are parsed once at SDK initialization.
type Contracts struct {
	// Exchange is the NFT exchange proxy, also the EIP-712 verifying contract.
	Exchange string `json:"exchange" yaml:"exchange" mapstructure:"exchange"`
	// CarbonCredit is the ERC-1155 contract holding tokenized credit batches.
	CarbonCredit string `json:"carbon_credit" yaml:"carbon_credit" mapstructure:"carbon_credit"`
	// StableToken is the ERC-20 quote token orders are priced in.
	StableToken string `json:"stable_token" yaml:"stable_token" mapstructure:"stable_token"`
	// BaseTokenManager handles convert/unwrap/recover/roll operations.
	BaseTokenManager string `json:"base_token_manager" yaml:"base_token_manager" mapstructure:"base_token_manager"`
	// RetirementHandler performs credit offsetting (retirement).
	RetirementHandler string `json:"retirement_handler" yaml:"retirement_handler" mapstructure:"retirement_handler"`
}

// contractDefaults holds built-in address books per chain ID; unknown
// networks must supply a full address book in the Config.
var contractDefaults = map[int64]Contracts{
	Polygon.ChainID: {
		Exchange:          "0xDef1C0ded9bec7F1a1670819833240f027b25EfF",
		CarbonCredit:      "0x4a1A6C642a5Fd52a0a9D3A7325C23Fb29b4606fB",
		StableToken:       "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		BaseTokenManager:  "0x3C5A90f63271997e2Ae96cD6Cfdc0cBbE773eF45",
		RetirementHandler: "0x8b6E96947349C5eFAf86Ea815151A9d23Cee1ba6",
	},
	Mumbai.ChainID: {
		Exchange:          "0xDef1C0ded9bec7F1a1670819833240f027b25EfF",
		CarbonCredit:      "0x5f38E0F4D1529f0c2a77614ba6C721db9bF4f7e8",
		StableToken:       "0xe11A86849d99F524cAC3E7A0Ec1241828e332C62",
		BaseTokenManager:  "0x9A9e32cA2A7CF2Bd42b64c81a237C3Fb2C1051F6",
		RetirementHandler: "0xB96e16A569E3f09a33E7b78b5e2E1C473DD3a9c7",
	},
}

var serviceDefaults = map[int64]struct{ orderbook, subgraph string }{
	Polygon.ChainID: {
		orderbook: "https://orderbook.thea.earth",
		subgraph:  "https://api.thegraph.com/subgraphs/name/thea-protocol/thea",
	},
	Mumbai.ChainID: {
		orderbook: "https://orderbook.mumbai.thea.earth",
		subgraph:  "https://api.thegraph.com/subgraphs/name/thea-protocol/thea-mumbai",
	},
}

// ContractsFor returns the built-in address book for the given network, or
// false if the network has no built-in defaults.
func ContractsFor(network Network) (Contracts, bool) {
	c, ok := contractDefaults[network.ChainID]
	return c, ok
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // web3 dial/connect
	HTTPRequest time.Duration // orderbook/subgraph HTTP request
	ChainRead   time.Duration // eth_call, balance etc
	ChainSubmit time.Duration // send tx
	ReceiptWait time.Duration // wait tx
}

// Validate normalizes the configuration by applying implicit defaults for
// the network (defaults to Mumbai), the contract address book, the orderbook,
// subgraph and IPFS endpoints, and verifies that RPCAddr is provided.
// Returns an error when RPCAddr is empty or the address book is incomplete
// for an unknown network.
func (c *Config) Validate() error {

	if c.Network.ChainID == 0 {
		c.Network = Mumbai
	}

	if c.Contracts == (Contracts{}) {
		defaults, ok := ContractsFor(c.Network)
		if !ok {
			return errors.New("no built-in contract addresses for network; provide a full address book")
		}
		c.Contracts = defaults
	}

	if c.Contracts.Exchange == "" || c.Contracts.CarbonCredit == "" || c.Contracts.StableToken == "" {
		return errors.New("contract address book is incomplete")
	}

	if svc, ok := serviceDefaults[c.Network.ChainID]; ok {
		if c.OrderbookURL == "" {
			c.OrderbookURL = svc.orderbook
		}
		if c.SubgraphURL == "" {
			c.SubgraphURL = svc.subgraph
		}
	}
	if c.OrderbookURL == "" {
		return errors.New("orderbook URL is required")
	}

	if c.IpfsURL == "" {
		c.IpfsURL = "https://ipfs.thea.earth:443"
	}
	if c.IpfsGatewayURL == "" {
		c.IpfsGatewayURL = "https://ipfs.io"
	}

	if c.StableTokenDecimals == 0 {
		c.StableTokenDecimals = 6
	}

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	HTTPRequest: 30s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.HTTPRequest == 0 {
		tt.HTTPRequest = 30 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	return tt
}
