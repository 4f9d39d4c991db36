package vault

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// getPoolConfig returns a struct made only of static fields, so its encoding is
// identical to the flattened output list below.
const vaultABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "name": "getPoolTokens",
    "outputs": [{"internalType": "contract IERC20[]", "name": "tokens", "type": "address[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "name": "getPoolTokenRates",
    "outputs": [
      {"internalType": "uint256[]", "name": "decimalScalingFactors", "type": "uint256[]"},
      {"internalType": "uint256[]", "name": "tokenRates", "type": "uint256[]"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "name": "getCurrentLiveBalances",
    "outputs": [{"internalType": "uint256[]", "name": "balancesLiveScaled18", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "name": "getPoolConfig",
    "outputs": [
      {"internalType": "bool", "name": "disableUnbalancedLiquidity", "type": "bool"},
      {"internalType": "bool", "name": "enableAddLiquidityCustom", "type": "bool"},
      {"internalType": "bool", "name": "enableRemoveLiquidityCustom", "type": "bool"},
      {"internalType": "bool", "name": "enableDonation", "type": "bool"},
      {"internalType": "uint256", "name": "staticSwapFeePercentage", "type": "uint256"},
      {"internalType": "uint256", "name": "aggregateSwapFeePercentage", "type": "uint256"},
      {"internalType": "uint256", "name": "aggregateYieldFeePercentage", "type": "uint256"},
      {"internalType": "uint40", "name": "tokenDecimalDiffs", "type": "uint40"},
      {"internalType": "uint32", "name": "pauseWindowEndTime", "type": "uint32"},
      {"internalType": "bool", "name": "isPoolRegistered", "type": "bool"},
      {"internalType": "bool", "name": "isPoolInitialized", "type": "bool"},
      {"internalType": "bool", "name": "isPoolPaused", "type": "bool"},
      {"internalType": "bool", "name": "isPoolInRecoveryMode", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const stablePoolABIJSON = `[
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "getAmplificationParameter",
    "outputs": [
      {"internalType": "uint256", "name": "value", "type": "uint256"},
      {"internalType": "bool", "name": "isUpdating", "type": "bool"},
      {"internalType": "uint256", "name": "precision", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [], "name": "getMinimumInvariantRatio", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getMaximumInvariantRatio", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc4626ABIJSON = `[
  {"inputs": [], "name": "asset", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [{"internalType": "uint256", "name": "shares", "type": "uint256"}],
    "name": "convertToAssets",
    "outputs": [{"type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const exitFeeHookABIJSON = `[
  {"inputs": [], "name": "exitFeePercentage", "outputs": [{"type": "uint64"}], "stateMutability": "view", "type": "function"}
]`

var (
	vaultABI     abi.ABI
	vaultABIOnce sync.Once
	vaultABIErr  error

	stablePoolABI     abi.ABI
	stablePoolABIOnce sync.Once
	stablePoolABIErr  error

	erc4626ABI     abi.ABI
	erc4626ABIOnce sync.Once
	erc4626ABIErr  error

	exitFeeHookABI     abi.ABI
	exitFeeHookABIOnce sync.Once
	exitFeeHookABIErr  error
)

// VaultABI returns the parsed vault ABI.
func VaultABI() (abi.ABI, error) {
	vaultABIOnce.Do(func() {
		vaultABI, vaultABIErr = abi.JSON(strings.NewReader(vaultABIJSON))
	})
	return vaultABI, vaultABIErr
}

// StablePoolABI returns the parsed stable pool ABI.
func StablePoolABI() (abi.ABI, error) {
	stablePoolABIOnce.Do(func() {
		stablePoolABI, stablePoolABIErr = abi.JSON(strings.NewReader(stablePoolABIJSON))
	})
	return stablePoolABI, stablePoolABIErr
}

// ERC4626ABI returns the parsed wrapped-token ABI.
func ERC4626ABI() (abi.ABI, error) {
	erc4626ABIOnce.Do(func() {
		erc4626ABI, erc4626ABIErr = abi.JSON(strings.NewReader(erc4626ABIJSON))
	})
	return erc4626ABI, erc4626ABIErr
}

// ExitFeeHookABI returns the parsed exit fee hook ABI.
func ExitFeeHookABI() (abi.ABI, error) {
	exitFeeHookABIOnce.Do(func() {
		exitFeeHookABI, exitFeeHookABIErr = abi.JSON(strings.NewReader(exitFeeHookABIJSON))
	})
	return exitFeeHookABI, exitFeeHookABIErr
}
