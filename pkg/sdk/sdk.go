// Package sdk exposes the high-level Thea SDK entry points. It wires
// together blockchain access (exchange, base token manager, retirement
// handler), the off-chain orderbook and subgraph services and the IPFS
// metadata store behind a single initialized handle.
package sdk

import (
	"go.uber.org/zap"

	"github.com/thea-protocol/thea-sdk-go/pkg/blockchain"
	"github.com/thea-protocol/thea-sdk-go/pkg/carbon"
	"github.com/thea-protocol/thea-sdk-go/pkg/config"
	"github.com/thea-protocol/thea-sdk-go/pkg/httpapi"
	"github.com/thea-protocol/thea-sdk-go/pkg/orderbook"
	"github.com/thea-protocol/thea-sdk-go/pkg/storage"
	"github.com/thea-protocol/thea-sdk-go/pkg/subgraph"
)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// SDK is the initialized protocol client. All sub-clients share the same
// configuration, credential and EVM connection.
type SDK struct {
	cfg  *config.Config
	cred *blockchain.Credential
	evm  *blockchain.EVMClient

	// Trading orchestrates limit and market orders against the exchange
	// and the off-chain orderbook.
	Trading *Trading
	// Carbon wraps the credit lifecycle contracts.
	Carbon *carbon.Client
	// Orderbook is the raw off-chain orderbook client.
	Orderbook *orderbook.Client
	// Subgraph queries token inventories and offset history.
	Subgraph *subgraph.Client
	// Storage reads and publishes credit-batch metadata on IPFS.
	Storage *storage.Client
}

// Init validates the configuration, connects the EVM client and wires the
// sub-clients. The credential decides which operations are available: a
// read-only credential serves queries, a signer credential adds on-chain
// transactions and a typed-data credential adds order signing.
func Init(cfg *config.Config, cred *blockchain.Credential) (*SDK, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	evm, err := blockchain.InitEvm(cfg)
	if err != nil {
		return nil, err
	}
	exec := blockchain.NewExecutor(evm, cfg.Timeouts)
	exchange := blockchain.NewExchangeClient(evm, exec)

	book := orderbook.New(cfg, httpapi.New(cfg.OrderbookURL, httpapi.WithTimeout(cfg.Timeouts.HTTPRequest)))
	graph := subgraph.New(httpapi.New(cfg.SubgraphURL, httpapi.WithTimeout(cfg.Timeouts.HTTPRequest)))
	store := storage.NewStorage(cfg.IpfsURL, cfg.IpfsGatewayURL)

	if cfg.Debug && cred.Kind() != blockchain.ReadOnlyProvider {
		zap.L().Debug("signer address", zap.String("addr", cred.Address().Hex()))
	}

	s := &SDK{
		cfg:       cfg,
		cred:      cred,
		evm:       evm,
		Carbon:    carbon.New(evm, exec),
		Orderbook: book,
		Subgraph:  graph,
		Storage:   store,
	}
	s.Trading = newTrading(cfg, cred, evm, exec, exchange, book)
	return s, nil
}

// Close releases the underlying EVM connection.
func (s *SDK) Close() {
	s.evm.Close()
}
