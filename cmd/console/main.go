package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Iwinswap/iwinswap-amm-engine-go/cmd/console/config"
	"github.com/Iwinswap/iwinswap-amm-engine-go/custody"
	"github.com/Iwinswap/iwinswap-amm-engine-go/events"
	"github.com/Iwinswap/iwinswap-amm-engine-go/pkg/logging"
	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/poolregistry"
	"github.com/Iwinswap/iwinswap-amm-engine-go/streams/wsserver"
)

// --- VISUAL CONSTANTS ---
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"

	DefaultEventBufferSize = 128
)

// header prints a styled section header
func header(title string) {
	fmt.Println("\n" + Bold + Cyan + ":: " + title + " ::" + Reset)
}

// console bundles everything the command handlers operate on.
type console struct {
	pool    *cpmm.Pool
	ledgerA *custody.TokenLedger
	ledgerB *custody.TokenLedger
	logger  *slog.Logger
}

func main() {
	// --- 1. CONFIG ---
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(Red + "Failed to load configuration: " + err.Error() + Reset)
		os.Exit(1)
	}

	// --- 2. SETUP LOGGING (To File) ---
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer logFile.Close()

	rootLogger := logging.NewLogger(logFile, cfg.LogLevel)

	closeApp := func() {
		fmt.Println("\n" + Red + "Fatal error occurred. Check " + cfg.LogFile + " for details." + Reset)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 3. CUSTODY & EVENT WIRING ---
	assetA := common.HexToAddress(cfg.AssetA)
	assetB := common.HexToAddress(cfg.AssetB)

	ledgerA := custody.NewTokenLedger(assetA)
	ledgerB := custody.NewTokenLedger(assetB)
	for _, acct := range cfg.Accounts {
		addr := common.HexToAddress(acct.Address)
		if err := mintBalance(ledgerA, addr, acct.BalanceA); err != nil {
			rootLogger.Error("Failed to seed balance", "asset", "A", "account", acct.Address, "error", err)
			closeApp()
		}
		if err := mintBalance(ledgerB, addr, acct.BalanceB); err != nil {
			rootLogger.Error("Failed to seed balance", "asset", "B", "account", acct.Address, "error", err)
			closeApp()
		}
	}

	broadcaster := events.NewBroadcaster(DefaultEventBufferSize)
	sink := events.MultiSink{
		events.NewLogSink(rootLogger.With("component", "event-log")),
		broadcaster,
	}

	prometheusRegistry := prometheus.NewRegistry()
	metrics := cpmm.NewMetrics(prometheusRegistry)

	// --- 4. POOL ---
	registry := poolregistry.NewRegistry()
	pool, err := registry.Create(cpmm.Config{
		AssetA:  assetA,
		AssetB:  assetB,
		LedgerA: ledgerA,
		LedgerB: ledgerB,
		Sink:    sink,
		Metrics: metrics,
		Logger:  rootLogger.With("component", "cpmm"),
	})
	if err != nil {
		rootLogger.Error("Failed to create pool", "error", err)
		closeApp()
	}

	// --- 5. EVENT STREAM (optional) ---
	if cfg.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", wsserver.NewServer(rootLogger.With("component", "wsserver"), broadcaster))
		mux.Handle("/metrics", promhttp.HandlerFor(prometheusRegistry, promhttp.HandlerOpts{}))

		srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				rootLogger.Error("Stream server failed", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		fmt.Println(Gray + "Event stream on ws://" + cfg.ListenAddr + "/ws | metrics on /metrics" + Reset)
	}

	// --- 6. CONSOLE LOOP ---
	fmt.Println(Green + "Starting AMM Pool Console..." + Reset)
	fmt.Println("Logs are being written to '" + cfg.LogFile + "'")

	c := &console{pool: pool, ledgerA: ledgerA, ledgerB: ledgerB, logger: rootLogger}
	runConsole(ctx, c)

	fmt.Println("\n" + Yellow + "Shutting down..." + Reset)
}

func loadConfig() (*config.ConsoleConfig, error) {
	path := flag.String("config", "", "path to the console yaml config (optional)")
	flag.Parse()

	if *path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(*path)
}

func mintBalance(ledger *custody.TokenLedger, addr common.Address, raw string) error {
	if raw == "" {
		return nil
	}
	amount, err := parseAmount(raw)
	if err != nil {
		return err
	}
	return ledger.Mint(addr, amount)
}

// runConsole handles user input and display.
func runConsole(ctx context.Context, c *console) {
	reader := bufio.NewReader(os.Stdin)

	for {
		if ctx.Err() != nil {
			return
		}

		printMenu()

		fmt.Print(Bold + "Enter selection: " + Reset)
		input, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		input = strings.TrimSpace(input)

		if input == "q" {
			return
		}
		c.handleCommand(input, reader)

		fmt.Println("\n" + Gray + "[Press Enter to continue]" + Reset)
		_, _ = reader.ReadString('\n')
	}
}

func printMenu() {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(Bold + "AMM POOL CONSOLE" + Reset + Gray + " | v0.1.0" + Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %s1.%s Pool Status\n", Cyan, Reset)
	fmt.Printf(" %s2.%s Quote Swap %s(no state change)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s3.%s Add Liquidity\n", Cyan, Reset)
	fmt.Printf(" %s4.%s Remove Liquidity\n", Cyan, Reset)
	fmt.Printf(" %s5.%s Swap\n", Cyan, Reset)
	fmt.Printf(" %s6.%s Account Balances\n", Cyan, Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %sh.%s Help\n", Yellow, Reset)
	fmt.Printf(" %sq.%s Quit\n", Red, Reset)
	fmt.Println("")
}

func (c *console) handleCommand(input string, reader *bufio.Reader) {
	switch input {
	case "1":
		c.printStatus()
	case "2":
		c.quote(reader)
	case "3":
		c.addLiquidity(reader)
	case "4":
		c.removeLiquidity(reader)
	case "5":
		c.swap(reader)
	case "6":
		c.printBalances(reader)
	case "h":
		printHelp()
	default:
		fmt.Println(Red + "Unknown command." + Reset)
	}
}

// --- COMMAND HANDLERS ---

func (c *console) printStatus() {
	view := c.pool.View()
	price := c.pool.Price()

	header("POOL STATUS")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE\t")
	fmt.Fprintln(w, "-----\t-----\t")
	fmt.Fprintf(w, "Asset A\t%s\t\n", view.AssetA.Hex())
	fmt.Fprintf(w, "Asset B\t%s\t\n", view.AssetB.Hex())
	fmt.Fprintf(w, "Reserve A\t%s\t\n", view.ReserveA.String())
	fmt.Fprintf(w, "Reserve B\t%s\t\n", view.ReserveB.String())
	fmt.Fprintf(w, "Total Shares\t%s\t\n", view.TotalShares.String())
	fmt.Fprintf(w, "Price (B/A, 1e18)\t%s\t\n", price.String())
	w.Flush()

	if view.TotalShares.Sign() == 0 {
		fmt.Println(Yellow + "Pool is empty. The first deposit sets the price." + Reset)
	}
}

func (c *console) quote(reader *bufio.Reader) {
	dir, err := promptDirection(reader)
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}
	amountIn, err := promptAmount(reader, "Amount in")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}

	assetA, assetB := c.pool.Assets()
	assetIn := assetA
	if dir == "b2a" {
		assetIn = assetB
	}

	out, err := c.pool.QuoteOut(assetIn, amountIn)
	if err != nil {
		fmt.Println(Red + "Quote failed: " + err.Error() + Reset)
		return
	}
	fmt.Printf("\n%sQUOTE ::%s %s in -> %s%s%s out\n", Green, Reset, amountIn.String(), Bold, out.String(), Reset)
}

func (c *console) addLiquidity(reader *bufio.Reader) {
	provider, err := promptAddress(reader, "Provider address")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}
	amountA, err := promptAmount(reader, "Amount A")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}
	amountB, err := promptAmount(reader, "Amount B")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}

	minted, err := c.pool.AddLiquidity(provider, amountA, amountB)
	if err != nil {
		fmt.Println(Red + "Deposit failed: " + err.Error() + Reset)
		return
	}
	fmt.Printf("\n%sOK ::%s minted %s%s%s shares\n", Green, Reset, Bold, minted.String(), Reset)
}

func (c *console) removeLiquidity(reader *bufio.Reader) {
	provider, err := promptAddress(reader, "Provider address")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}
	shares, err := promptAmount(reader, "Shares to burn")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}

	amountA, amountB, err := c.pool.RemoveLiquidity(provider, shares)
	if err != nil {
		fmt.Println(Red + "Withdrawal failed: " + err.Error() + Reset)
		return
	}
	fmt.Printf("\n%sOK ::%s returned %s of A and %s of B\n", Green, Reset, amountA.String(), amountB.String())
}

func (c *console) swap(reader *bufio.Reader) {
	trader, err := promptAddress(reader, "Trader address")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}
	dir, err := promptDirection(reader)
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}
	amountIn, err := promptAmount(reader, "Amount in")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}

	var out *big.Int
	if dir == "a2b" {
		out, err = c.pool.SwapAForB(trader, amountIn)
	} else {
		out, err = c.pool.SwapBForA(trader, amountIn)
	}
	if err != nil {
		fmt.Println(Red + "Swap failed: " + err.Error() + Reset)
		return
	}
	fmt.Printf("\n%sOK ::%s received %s%s%s\n", Green, Reset, Bold, out.String(), Reset)
}

func (c *console) printBalances(reader *bufio.Reader) {
	addr, err := promptAddress(reader, "Account address")
	if err != nil {
		fmt.Println(Red + err.Error() + Reset)
		return
	}

	header("ACCOUNT")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE\t")
	fmt.Fprintln(w, "-----\t-----\t")
	fmt.Fprintf(w, "Balance A\t%s\t\n", c.ledgerA.BalanceOf(addr).String())
	fmt.Fprintf(w, "Balance B\t%s\t\n", c.ledgerB.BalanceOf(addr).String())
	fmt.Fprintf(w, "Pool Shares\t%s\t\n", c.pool.SharesOf(addr).String())
	fmt.Fprintf(w, "Total Shares\t%s\t\n", c.pool.TotalShares().String())
	w.Flush()
}

func printHelp() {
	fmt.Print("\033[H\033[2J")

	header("CONSTANT-PRODUCT POOL")
	fmt.Println(Bold + "Concept" + Reset)
	fmt.Println("The pool holds reserves of two assets. Swaps are priced so that")
	fmt.Println("reserveA * reserveB never decreases; the 0.3% fee stays in the")
	fmt.Println("reserves and accrues to share holders.")
	fmt.Println("")
	fmt.Println(Bold + "Deposits" + Reset)
	fmt.Println("The first deposit mints sqrt(amountA * amountB) shares and sets the")
	fmt.Println("price. Later deposits mint amountA * totalShares / reserveA: the mint")
	fmt.Println("follows the A side only, so " + Yellow + "deposit at the current reserve ratio" + Reset)
	fmt.Println("or the excess is donated to existing holders.")
	fmt.Println("")
	fmt.Println(Bold + "Withdrawals" + Reset)
	fmt.Println("Burning shares returns the proportional slice of both reserves,")
	fmt.Println("including any accrued fees.")
	fmt.Println("")
	fmt.Println(Gray + "Amounts are plain integers; use 18-decimal fixed point (1e18 = 1.0)." + Reset)
}

// --- INPUT HELPERS ---

func promptAddress(reader *bufio.Reader, label string) (common.Address, error) {
	fmt.Print(Bold + label + ": " + Reset)
	line, err := reader.ReadString('\n')
	if err != nil {
		return common.Address{}, err
	}
	line = strings.TrimSpace(line)
	if !common.IsHexAddress(line) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", line)
	}
	return common.HexToAddress(line), nil
}

func promptAmount(reader *bufio.Reader, label string) (*big.Int, error) {
	fmt.Print(Bold + label + ": " + Reset)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return parseAmount(strings.TrimSpace(line))
}

func promptDirection(reader *bufio.Reader) (string, error) {
	fmt.Print(Bold + "Direction (a2b/b2a): " + Reset)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	dir := strings.ToLower(strings.TrimSpace(line))
	if dir != "a2b" && dir != "b2a" {
		return "", fmt.Errorf("direction must be a2b or b2a, got %q", dir)
	}
	return dir, nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a base-10 integer", raw)
	}
	return amount, nil
}
