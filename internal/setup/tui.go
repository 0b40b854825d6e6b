package setup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vadiminshakov/seedfarm/config"
)

const (
	walletKeystore = "keystore"
	walletKey      = "key"
	walletNone     = "none"

	storeWAL   = "wal"
	storeRedis = "redis"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#3E8E5E", Dark: "#5FBF7F"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers collects the wizard inputs as typed.
type answers struct {
	rpcURL       string
	chainID      string
	token        string
	farm         string
	pair         string
	walletKind   string
	keystoreDir  string
	passEnv      string
	keyEnv       string
	storeKind    string
	sessionDir   string
	redisAddr    string
	pollInterval string
	stalePrice   bool
	webAddr      string
	domains      string
}

func defaultAnswers() answers {
	d := config.Default()
	return answers{
		rpcURL:       d.RPCURL,
		chainID:      "0",
		token:        d.Contracts.Token,
		farm:         d.Contracts.Farm,
		pair:         d.Contracts.Pair,
		walletKind:   walletKeystore,
		passEnv:      d.Wallet.PassphraseEnv,
		keyEnv:       d.Wallet.PrivateKeyEnv,
		storeKind:    storeWAL,
		sessionDir:   d.Session.Dir,
		pollInterval: d.PollInterval.String(),
		webAddr:      d.Web.Addr,
	}
}

func clearScreen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SEEDFARM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI walks through the configuration and writes it to path.
func RunTUI(path string) error {
	a := defaultAnswers()
	var confirm bool

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SEEDFARM CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point the dashboard at your farm.\n"))

	fmt.Println(stepStyle.Render("STEP 1: NETWORK"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC endpoint").
				Value(&a.rpcURL).
				Validate(notEmpty("rpc url")),
			huh.NewInput().
				Title("Chain ID").
				Description("0 asks the node").
				Value(&a.chainID).
				Validate(validateChainID),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 2: CONTRACTS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Token address").Value(&a.token).Validate(validateAddress),
			huh.NewInput().Title("Farm address").Value(&a.farm).Validate(validateAddress),
			huh.NewInput().Title("Pair address").Description("Price = reserve0 / reserve1").Value(&a.pair).Validate(validateAddress),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 3: WALLET")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How do you sign transactions?").
				Options(
					huh.NewOption("Encrypted keystore directory", walletKeystore),
					huh.NewOption("Private key from environment", walletKey),
					huh.NewOption("Read only (no wallet)", walletNone),
				).
				Value(&a.walletKind),
		),
	).Run()
	if err != nil {
		return err
	}

	switch a.walletKind {
	case walletKeystore:
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Keystore directory").Value(&a.keystoreDir).Validate(notEmpty("keystore directory")),
				huh.NewInput().Title("Passphrase environment variable").Value(&a.passEnv).Validate(notEmpty("variable name")),
			),
		).Run()
	case walletKey:
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Private key environment variable").Value(&a.keyEnv).Validate(notEmpty("variable name")),
			),
		).Run()
	}
	if err != nil {
		return err
	}

	clearScreen("STEP 4: SESSION")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where to remember the connected wallet?").
				Options(
					huh.NewOption("Local write-ahead log", storeWAL),
					huh.NewOption("Redis", storeRedis),
				).
				Value(&a.storeKind),
		),
	).Run()
	if err != nil {
		return err
	}

	if a.storeKind == storeRedis {
		a.redisAddr = "localhost:6379"
		err = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Redis address").Value(&a.redisAddr).Validate(notEmpty("redis address")),
		)).Run()
	} else {
		err = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Session directory").Value(&a.sessionDir).Validate(notEmpty("session directory")),
		)).Run()
	}
	if err != nil {
		return err
	}

	clearScreen("STEP 5: DASHBOARD")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll interval").
				Description("Go duration, e.g. 5s").
				Value(&a.pollInterval).
				Validate(validateInterval),
			huh.NewConfirm().
				Title("Compute APR with the previous tick's price?").
				Description("Matches the legacy dapp, shows '-' on the first tick").
				Value(&a.stalePrice),
			huh.NewInput().Title("Web listen address").Value(&a.webAddr),
			huh.NewInput().
				Title("TLS domains").
				Description("Comma separated, empty serves plain HTTP").
				Value(&a.domains),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg, err := a.config()
	if err != nil {
		return err
	}

	clearScreen("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"RPC: %s\nFarm: %s\nWallet: %s\nSession: %s\nInterval: %s\n",
		cfg.RPCURL, cfg.Contracts.Farm, a.walletKind, a.storeKind, cfg.PollInterval,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", path)))
	return nil
}

// config turns the answers into a validated configuration.
func (a answers) config() (config.Config, error) {
	cfg := config.Default()
	cfg.RPCURL = strings.TrimSpace(a.rpcURL)

	chainID, err := strconv.ParseInt(strings.TrimSpace(a.chainID), 10, 64)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid chain id: %w", err)
	}
	cfg.ChainID = chainID

	cfg.Contracts = config.Contracts{
		Token: strings.TrimSpace(a.token),
		Farm:  strings.TrimSpace(a.farm),
		Pair:  strings.TrimSpace(a.pair),
	}

	switch a.walletKind {
	case walletKeystore:
		cfg.Wallet.KeystoreDir = a.keystoreDir
		cfg.Wallet.PassphraseEnv = a.passEnv
	case walletKey:
		cfg.Wallet.PrivateKeyEnv = a.keyEnv
	case walletNone:
		cfg.Wallet.PrivateKeyEnv = ""
	}

	if a.storeKind == storeRedis {
		cfg.Session.RedisAddr = a.redisAddr
	} else {
		cfg.Session.Dir = a.sessionDir
	}

	cfg.PollInterval, err = time.ParseDuration(a.pollInterval)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid poll interval: %w", err)
	}
	cfg.APRStalePrice = a.stalePrice

	if a.webAddr != "" {
		cfg.Web.Addr = a.webAddr
	}
	for _, d := range strings.Split(a.domains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			cfg.Web.Domains = append(cfg.Web.Domains, d)
		}
	}

	return cfg, cfg.Validate()
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func validateAddress(s string) error {
	if !common.IsHexAddress(strings.TrimSpace(s)) {
		return fmt.Errorf("must be a 0x-prefixed 20 byte hex address")
	}
	return nil
}

func validateChainID(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration like 5s")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
