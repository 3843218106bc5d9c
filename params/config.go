package params

import (
	"fmt"
	"math/big"
	"strings"
)

// NetworkType names an Ethereum network the light client follows.
type NetworkType string

// Different Network names
const (
	Mainnet NetworkType = "mainnet"
	Ropsten NetworkType = "ropsten"
	Test    NetworkType = "test"
)

// ParseNetwork resolves a configured network name.
func ParseNetwork(name string) (NetworkType, error) {
	switch network := NetworkType(strings.ToLower(strings.TrimSpace(name))); network {
	case Mainnet, Ropsten, Test:
		return network, nil
	default:
		return "", fmt.Errorf("unknown network %q", name)
	}
}

// BombDelay activates a difficulty bomb offset from the given block onwards.
type BombDelay struct {
	Block uint64
	Delay uint64
}

// EthashParams holds the immutable Ethash constants of one network. Fork
// blocks left nil are never activated.
type EthashParams struct {
	Name string

	MinimumDifficulty      *big.Int
	DifficultyBoundDivisor *big.Int
	DurationLimit          *big.Int

	GasLimitBoundDivisor uint64
	MinGasLimit          uint64
	MaxGasLimit          uint64
	MaximumExtraDataSize uint64

	HomesteadBlock *big.Int
	ByzantiumBlock *big.Int
	LondonBlock    *big.Int

	// BombDelays is ordered by activation block. The entry in force for a
	// block is the last one whose Block is not above it; only consulted once
	// Byzantium is active.
	BombDelays []BombDelay
}

var (
	// MainnetEthashParams are the proof-of-work era parameters of Ethereum mainnet.
	MainnetEthashParams = &EthashParams{
		Name:                   string(Mainnet),
		MinimumDifficulty:      MinimumDifficulty,
		DifficultyBoundDivisor: DifficultyBoundDivisor,
		DurationLimit:          DurationLimit,
		GasLimitBoundDivisor:   GasLimitBoundDivisor,
		MinGasLimit:            MinGasLimit,
		MaxGasLimit:            MaxGasLimit,
		MaximumExtraDataSize:   MaximumExtraDataSize,
		HomesteadBlock:         big.NewInt(1_150_000),
		ByzantiumBlock:         big.NewInt(4_370_000),
		LondonBlock:            big.NewInt(12_965_000),
		BombDelays: []BombDelay{
			{Block: 4_370_000, Delay: 3_000_000},   // EIP-649
			{Block: 7_280_000, Delay: 5_000_000},   // EIP-1234
			{Block: 9_200_000, Delay: 9_000_000},   // EIP-2384
			{Block: 12_965_000, Delay: 9_700_000},  // EIP-3554
			{Block: 13_773_000, Delay: 10_700_000}, // EIP-4345
			{Block: 15_050_000, Delay: 11_400_000}, // EIP-5133
		},
	}

	// RopstenEthashParams are the proof-of-work era parameters of the Ropsten test network.
	RopstenEthashParams = &EthashParams{
		Name:                   string(Ropsten),
		MinimumDifficulty:      MinimumDifficulty,
		DifficultyBoundDivisor: DifficultyBoundDivisor,
		DurationLimit:          DurationLimit,
		GasLimitBoundDivisor:   GasLimitBoundDivisor,
		MinGasLimit:            MinGasLimit,
		MaxGasLimit:            MaxGasLimit,
		MaximumExtraDataSize:   MaximumExtraDataSize,
		HomesteadBlock:         big.NewInt(0),
		ByzantiumBlock:         big.NewInt(1_700_000),
		LondonBlock:            big.NewInt(10_499_401),
		BombDelays: []BombDelay{
			{Block: 1_700_000, Delay: 3_000_000},
			{Block: 4_230_000, Delay: 5_000_000},
			{Block: 7_117_117, Delay: 9_000_000},
			{Block: 10_499_401, Delay: 9_700_000},
		},
	}

	// TestEthashParams run Byzantium rules from genesis with a difficulty
	// floor of one so that sealing test headers is cheap.
	TestEthashParams = &EthashParams{
		Name:                   string(Test),
		MinimumDifficulty:      big.NewInt(1),
		DifficultyBoundDivisor: DifficultyBoundDivisor,
		DurationLimit:          DurationLimit,
		GasLimitBoundDivisor:   GasLimitBoundDivisor,
		MinGasLimit:            MinGasLimit,
		MaxGasLimit:            MaxGasLimit,
		MaximumExtraDataSize:   MaximumExtraDataSize,
		HomesteadBlock:         big.NewInt(0),
		ByzantiumBlock:         big.NewInt(0),
		BombDelays:             []BombDelay{{Block: 0, Delay: 3_000_000}},
	}
)

func isForked(fork *big.Int, number uint64) bool {
	return fork != nil && fork.IsUint64() && fork.Uint64() <= number
}

// IsHomestead returns whether number is either equal to the Homestead fork block or greater.
func (p *EthashParams) IsHomestead(number uint64) bool {
	return isForked(p.HomesteadBlock, number)
}

// IsByzantium returns whether number is either equal to the Byzantium fork block or greater.
func (p *EthashParams) IsByzantium(number uint64) bool {
	return isForked(p.ByzantiumBlock, number)
}

// IsLondon returns whether number is either equal to the London fork block or greater.
func (p *EthashParams) IsLondon(number uint64) bool {
	return isForked(p.LondonBlock, number)
}

// BombDelay returns the difficulty bomb offset in force at the given block.
func (p *EthashParams) BombDelay(number uint64) uint64 {
	var delay uint64
	for _, d := range p.BombDelays {
		if d.Block > number {
			break
		}
		delay = d.Delay
	}
	return delay
}

func (p *EthashParams) String() string {
	return fmt.Sprintf("{Name: %s Homestead: %v Byzantium: %v London: %v BombDelays: %d}",
		p.Name, p.HomesteadBlock, p.ByzantiumBlock, p.LondonBlock, len(p.BombDelays))
}

// NetworkConfig is the deployment-time selection of the followed network and
// of the finality buffer. It is fixed for the lifetime of the process.
type NetworkConfig struct {
	Network       NetworkType
	Confirmations uint64
}

// EthashParams resolves the Ethash constant set of the configured network.
func (c NetworkConfig) EthashParams() (*EthashParams, error) {
	switch c.Network {
	case Mainnet:
		return MainnetEthashParams, nil
	case Ropsten:
		return RopstenEthashParams, nil
	case Test:
		return TestEthashParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", c.Network)
	}
}
