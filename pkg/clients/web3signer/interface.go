package web3signer

import (
	"context"
	"net/http"
)

// IWeb3Signer is the part of the Web3Signer api used for transaction signing.
type IWeb3Signer interface {
	// SetHttpClient replaces the HTTP client, e.g. to add mutual TLS.
	SetHttpClient(client *http.Client)

	// EthAccounts lists the addresses the signer holds keys for (eth_accounts).
	EthAccounts(ctx context.Context) ([]string, error)

	// EthSignTransaction signs a transaction and returns it RLP encoded (eth_signTransaction).
	EthSignTransaction(ctx context.Context, from string, transaction map[string]interface{}) (string, error)

	// Upcheck reports whether the service is up (GET /upcheck).
	Upcheck(ctx context.Context) error
}

// Compile-time check to ensure Client implements IWeb3Signer
var _ IWeb3Signer = (*Client)(nil)
