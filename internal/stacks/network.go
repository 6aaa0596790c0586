package stacks

// Network identifies a Stacks chain network.
type Network string

const (
	Testnet Network = "testnet"
	Mainnet Network = "mainnet"
)

// ParseNetwork normalises the provided value, falling back to testnet so
// a misconfigured service never points at mainnet by accident.
func ParseNetwork(v string) Network {
	if Network(v) == Mainnet {
		return Mainnet
	}
	return Testnet
}

// Name returns the string form of the network.
func (n Network) Name() string {
	return string(n)
}

// AddressPrefix returns the two-letter account prefix used on the network.
func (n Network) AddressPrefix() string {
	if n == Mainnet {
		return "SP"
	}
	return "ST"
}

// APIURL returns the Hiro API base URL for the network.
func (n Network) APIURL() string {
	if n == Mainnet {
		return "https://api.hiro.so"
	}
	return "https://api.testnet.hiro.so"
}
