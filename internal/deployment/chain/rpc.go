package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

var rpcPollInterval = time.Second

// WaitForRPC polls url until it answers eth_blockNumber or attempts run out.
func WaitForRPC(ctx context.Context, url string, attempts int) error {
	for range attempts {
		client, err := ethclient.DialContext(ctx, url)
		if err == nil {
			_, err = client.BlockNumber(ctx)
			client.Close()
			if err == nil {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rpcPollInterval):
		}
	}

	return fmt.Errorf("timed out waiting for RPC at %s", url)
}
