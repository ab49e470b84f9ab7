package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3ledger/internal/permit"
	"github.com/Mohsinsiddi/w3ledger/internal/ui"
	"github.com/Mohsinsiddi/w3ledger/internal/wallet"
)

var (
	permitWallet   string
	permitOwner    string
	permitSpender  string
	permitAmount   string
	permitDeadline string
	permitTTL      time.Duration
	permitSig      string
)

var permitCmd = &cobra.Command{
	Use:   "permit",
	Short: "Sign and submit off-chain allowance authorizations",
	Long: `Work with EIP-2612-style permits.

Sub-commands:
  w3ledger permit sign     — sign an allowance with a stored wallet key
  w3ledger permit submit   — verify a signature and install the allowance
  w3ledger permit digest   — inspect the digest a signature must cover`,
}

var permitSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a permit with a stored wallet key",
	Long: `Produce the signature components for an allowance authorization.

The digest covers the wallet's current nonce, so the signature is
single-use: submitting any other permit from this wallet first
invalidates it.

Examples:
  w3ledger permit sign --wallet alice --spender bob --amount 400
  w3ledger permit sign --wallet alice --spender 0xDEF... --amount 400 --deadline never`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if permitWallet == "" || permitSpender == "" || permitAmount == "" {
			return fmt.Errorf("--wallet, --spender, and --amount are required")
		}

		mgr := walletManager()
		w, err := mgr.Get(permitWallet)
		if err != nil {
			return err
		}

		spender, err := resolveAddress(permitSpender)
		if err != nil {
			return err
		}
		value, err := parseAmount(permitAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}
		deadline, err := parseDeadline(permitDeadline, permitTTL)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		sig, err := wallet.SignPermit(w, mgr.Keystore(), tok.Authorizer(), spender, value, deadline)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Permit Signed", [][2]string{
			{"Owner", ui.Addr(w.Address)},
			{"Spender", ui.Addr(spender.Hex())},
			{"Amount", fmt.Sprintf("%s %s", permitAmount, cfg.TokenSymbol)},
			{"Nonce", tok.Nonce(mustAddress(w.Address)).Dec()},
			{"Deadline", formatDeadline(deadline)},
			{"Signature", ui.Val(encodeSignature(sig))},
			{"V", fmt.Sprintf("%d", sig.V)},
			{"R", "0x" + hex.EncodeToString(sig.R[:])},
			{"S", "0x" + hex.EncodeToString(sig.S[:])},
		}))
		return nil
	},
}

var permitSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Verify a permit signature and install the allowance",
	Long: `Validate an owner-signed authorization and, on success, advance the
owner's nonce and overwrite the allowance.

Examples:
  w3ledger permit submit --owner alice --spender bob --amount 400 --sig 0x...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if permitOwner == "" || permitSpender == "" || permitAmount == "" || permitSig == "" {
			return fmt.Errorf("--owner, --spender, --amount, and --sig are required")
		}

		owner, err := resolveAddress(permitOwner)
		if err != nil {
			return err
		}
		spender, err := resolveAddress(permitSpender)
		if err != nil {
			return err
		}
		value, err := parseAmount(permitAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}
		deadline, err := parseDeadline(permitDeadline, permitTTL)
		if err != nil {
			return err
		}
		sig, err := decodeSignature(permitSig)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		if err := tok.Permit(owner, spender, value, deadline, sig); err != nil {
			fmt.Println(ui.Err(err.Error()))
			return err
		}

		fmt.Println(ui.Success("Permit accepted"))
		fmt.Printf("  allowance(%s, %s) = %s %s\n",
			ui.Addr(owner.Hex()), ui.Addr(spender.Hex()),
			ui.Val(formatAmount(tok.Allowance(owner, spender), cfg.TokenDecimals)), cfg.TokenSymbol)
		fmt.Printf("  nonce(%s) = %s\n", ui.Addr(owner.Hex()), tok.Nonce(owner).Dec())
		return nil
	},
}

var permitDigestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Show the digest a permit signature must cover",
	Long: `Reconstruct the domain separator, struct hash, and final digest for
a permit over the owner's current nonce. Useful for signing with an
external wallet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if permitOwner == "" || permitSpender == "" || permitAmount == "" {
			return fmt.Errorf("--owner, --spender, and --amount are required")
		}

		owner, err := resolveAddress(permitOwner)
		if err != nil {
			return err
		}
		spender, err := resolveAddress(permitSpender)
		if err != nil {
			return err
		}
		value, err := parseAmount(permitAmount, cfg.TokenDecimals)
		if err != nil {
			return err
		}
		deadline, err := parseDeadline(permitDeadline, permitTTL)
		if err != nil {
			return err
		}

		tok, j, err := openToken()
		if err != nil {
			return err
		}
		defer j.Close()

		auth := tok.Authorizer()
		nonce := tok.Nonce(owner)
		structHash := auth.StructHash(owner, spender, value, nonce, deadline)
		digest := auth.Digest(owner, spender, value, nonce, deadline)

		fmt.Println(ui.KeyValueBlock("Permit Digest", [][2]string{
			{"Domain Separator", auth.DomainSeparator().Hex()},
			{"Struct Hash", structHash.Hex()},
			{"Digest", ui.Val(digest.Hex())},
			{"Nonce", nonce.Dec()},
			{"Deadline", formatDeadline(deadline)},
		}))
		return nil
	},
}

// parseDeadline resolves the --deadline flag ("never", a unix
// timestamp) or, when unset, now + ttl.
func parseDeadline(s string, ttl time.Duration) (*uint256.Int, error) {
	switch s {
	case "never":
		max := new(uint256.Int)
		return max.Not(max), nil // 2^256-1
	case "":
		return uint256.NewInt(uint64(time.Now().Add(ttl).Unix())), nil
	default:
		v, err := uint256.FromDecimal(s)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline %q: %w", s, err)
		}
		return v, nil
	}
}

func formatDeadline(d *uint256.Int) string {
	if !d.IsUint64() {
		return "never"
	}
	return time.Unix(int64(d.Uint64()), 0).UTC().Format(time.RFC3339)
}

// encodeSignature packs V/R/S into the 65-byte r||s||v hex form.
func encodeSignature(sig permit.Signature) string {
	raw := make([]byte, 65)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V
	return "0x" + hex.EncodeToString(raw)
}

// decodeSignature parses a 65-byte hex signature. V may use either the
// 27/28 or the 0/1 convention.
func decodeSignature(s string) (permit.Signature, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return permit.Signature{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(raw) != 65 {
		return permit.Signature{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(raw))
	}
	var sig permit.Signature
	copy(sig.R[:], raw[0:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	if sig.V < 27 {
		sig.V += 27
	}
	return sig, nil
}

func init() {
	permitSignCmd.Flags().StringVar(&permitWallet, "wallet", "", "signing wallet name")
	permitSubmitCmd.Flags().StringVar(&permitOwner, "owner", "", "allowance owner")
	permitDigestCmd.Flags().StringVar(&permitOwner, "owner", "", "allowance owner")
	for _, c := range []*cobra.Command{permitSignCmd, permitSubmitCmd, permitDigestCmd} {
		c.Flags().StringVar(&permitSpender, "spender", "", "spender (address or wallet name)")
		c.Flags().StringVar(&permitAmount, "amount", "", "allowance in token units")
		c.Flags().StringVar(&permitDeadline, "deadline", "", `unix timestamp or "never" (default: now + --ttl)`)
		c.Flags().DurationVar(&permitTTL, "ttl", time.Hour, "validity window when --deadline is unset")
	}
	permitSubmitCmd.Flags().StringVar(&permitSig, "sig", "", "65-byte signature hex (r||s||v)")

	permitCmd.AddCommand(permitSignCmd, permitSubmitCmd, permitDigestCmd)
}
