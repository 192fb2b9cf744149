package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// tickerResponse is the public ticker shape: {"symbol":"BTCUSDT","price":"68000.12"}
type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// RefPriceClient polls a public REST ticker to keep the synthetic
// generator's reference price anchored near reality. Optional: the
// generator falls back to its configured constant when this never runs.
type RefPriceClient struct {
	onUpdate     func(decimal.Decimal)
	price        decimal.Decimal
	mu           sync.RWMutex
	pollInterval time.Duration
	apiURL       string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewRefPriceClient creates a poller for the given ticker endpoint
func NewRefPriceClient(apiURL string, pollIntervalSec int, onUpdate func(decimal.Decimal)) *RefPriceClient {
	interval := 60 * time.Second
	if pollIntervalSec > 0 {
		interval = time.Duration(pollIntervalSec) * time.Second
	}
	return &RefPriceClient{
		onUpdate:     onUpdate,
		price:        decimal.Zero,
		pollInterval: interval,
		apiURL:       apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start begins polling for reference price updates
func (c *RefPriceClient) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	// Fetch immediately on start; a failure just waits for the next tick
	if err := c.fetchPrice(ctx); err != nil {
		slog.Warn("Initial reference price fetch failed", slog.Any("error", err))
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Reference price polling stopped")
				return
			case <-ticker.C:
				if err := c.fetchPrice(ctx); err != nil {
					slog.Warn("Reference price fetch failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

// Stop halts polling and waits for the goroutine to exit
func (c *RefPriceClient) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// GetPrice returns the last fetched price (zero before the first fetch)
func (c *RefPriceClient) GetPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.price
}

func (c *RefPriceClient) fetchPrice(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return err
	}

	var ticker tickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return err
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return fmt.Errorf("non-numeric price %q: %w", ticker.Price, err)
	}
	if !price.IsPositive() {
		return fmt.Errorf("non-positive price %s", price)
	}

	c.mu.Lock()
	c.price = price
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(price)
	}
	return nil
}
