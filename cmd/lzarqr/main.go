// Command lzarqr encodes, decodes and routes LZAR wallet QR payloads from the
// command line.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/qr"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "lzarqr:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	app := kingpin.New("lzarqr", "Encode, decode and route LZAR wallet QR payloads.")
	app.Terminate(nil)
	app.UsageWriter(stdout)
	app.ErrorWriter(stdout)

	encode := app.Command("encode", "Encode a QR intent as a payload string.")

	payment := encode.Command("payment", "Encode a payment request.")
	paymentCharge := payment.Flag("charge-id", "Charge identifier.").Required().String()
	paymentAmount := payment.Flag("amount", "Amount in LZAR.").Required().String()
	paymentMerchant := payment.Flag("merchant", "Merchant display name.").Required().String()
	paymentDesc := payment.Flag("description", "Payment description.").String()
	paymentMerchantID := payment.Flag("merchant-id", "Merchant identifier.").String()
	paymentExpires := payment.Flag("expires-at", "Expiry timestamp.").String()

	profile := encode.Command("profile", "Encode a user profile.")
	profileUser := profile.Flag("user-id", "User identifier.").Required().String()
	profileName := profile.Flag("name", "User display name.").Required().String()
	profileImage := profile.Flag("image", "Profile image URL.").String()

	receipt := encode.Command("receipt", "Encode a transaction receipt.")
	receiptTxn := receipt.Flag("transaction-id", "Transaction identifier.").Required().String()
	receiptAmount := receipt.Flag("amount", "Amount in LZAR.").Required().String()
	receiptTimestamp := receipt.Flag("timestamp", "Completion timestamp.").Required().String()
	receiptStatus := receipt.Flag("status", "Transaction status.").Default("completed").String()

	decode := app.Command("decode", "Decode a payload and print the intent.")
	decodePayload := decode.Arg("payload", "Scanned payload.").Required().String()

	scan := app.Command("scan", "Route payloads read line by line from stdin, as repeated camera frames.")
	scanRearm := scan.Flag("rearm", "Rearm after every actionable code.").Bool()

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	switch command {
	case payment.FullCommand():
		amount, err := decimal.NewFromString(*paymentAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q", *paymentAmount)
		}
		return printEncoded(stdout, qr.PaymentRequest{
			ChargeID:     *paymentCharge,
			Amount:       amount,
			Currency:     models.Currency,
			Description:  *paymentDesc,
			MerchantName: *paymentMerchant,
			MerchantID:   *paymentMerchantID,
			ExpiresAt:    *paymentExpires,
		})

	case profile.FullCommand():
		return printEncoded(stdout, qr.UserProfile{
			UserID:       *profileUser,
			UserName:     *profileName,
			ProfileImage: *profileImage,
		})

	case receipt.FullCommand():
		amount, err := decimal.NewFromString(*receiptAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q", *receiptAmount)
		}
		return printEncoded(stdout, qr.TransactionReceipt{
			TransactionID: *receiptTxn,
			Amount:        amount,
			Currency:      models.Currency,
			Timestamp:     *receiptTimestamp,
			Status:        *receiptStatus,
		})

	case decode.FullCommand():
		intent, err := qr.Decode(*decodePayload)
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]any{"type": intent.Type(), "intent": intent})

	case scan.FullCommand():
		return scanFrames(stdin, stdout, *scanRearm)
	}

	return nil
}

func printEncoded(w io.Writer, intent qr.Intent) error {
	payload, err := qr.Encode(intent)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, payload)
	return err
}

// scanFrames prints one dispatch per routed frame. Frames ignored while the scanner
// is processing print nothing.
func scanFrames(r io.Reader, w io.Writer, rearm bool) error {
	scanner := qr.NewScanner()
	lines := bufio.NewScanner(r)
	for lines.Scan() {
		d, ok := scanner.Scan(lines.Text())
		if !ok {
			continue
		}
		if err := writeJSON(w, d); err != nil {
			return err
		}
		if rearm {
			scanner.Rearm()
		}
	}
	return lines.Err()
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
