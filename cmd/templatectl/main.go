package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

type syncResponse struct {
	Message   string `json:"message"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Indicator string `json:"indicator"`
}

type fetchResponse struct {
	Message string `json:"message"`
	Synced  int    `json:"synced"`
}

type errorResponse struct {
	Error string `json:"error"`
	Title string `json:"title"`
}

type templateRecord struct {
	Name            string `json:"name"`
	ActualName      string `json:"actual_name"`
	ProviderID      string `json:"id"`
	WhatsAppAccount string `json:"whatsapp_account"`
	Status          string `json:"status"`
	Category        string `json:"category"`
	LanguageCode    string `json:"language_code"`
}

func main() {
	app := &cli.App{
		Name:  "templatectl",
		Usage: "manage WhatsApp message templates through the template gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "template gateway base URL",
				EnvVars: []string{"TEMPLATECTL_SERVER"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   2 * time.Minute,
				Usage:   "request timeout",
				EnvVars: []string{"TEMPLATECTL_TIMEOUT"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "sync",
				Usage:     "sync one template's status from WhatsApp",
				ArgsUsage: "<template-name>",
				Action:    runSync,
			},
			{
				Name:  "fetch",
				Usage: "fetch all templates from WhatsApp",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "menu",
						Usage: "behave like the list-view menu entry (raw error surfacing)",
					},
				},
				Action: runFetch,
			},
			{
				Name:   "list",
				Usage:  "list stored templates",
				Action: runList,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func httpClient(c *cli.Context) *http.Client {
	return &http.Client{Timeout: c.Duration("timeout")}
}

func postJSON(c *cli.Context, path string) ([]byte, *errorResponse, error) {
	url := c.String("server") + path
	resp, err := httpClient(c).Post(url, "application/json", bytes.NewReader(nil))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, &errResp, nil
		}
		return nil, &errorResponse{Error: fmt.Sprintf("unexpected status %d", resp.StatusCode)}, nil
	}
	return body, nil, nil
}

func getJSON(c *cli.Context, path string, out interface{}) error {
	url := c.String("server") + path
	resp, err := httpClient(c).Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func indicatorColor(indicator string) string {
	switch indicator {
	case "green":
		return colorGreen
	case "blue":
		return colorBlue
	default:
		return colorReset
	}
}

// runSync is the detail-view action: sync, show the notification, then
// reload and print the record. A failed sync leaves the record unread.
func runSync(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("template name required", 1)
	}

	fmt.Println("Syncing template status from WhatsApp...")

	body, errResp, err := postJSON(c, "/api/templates/"+name+"/sync")
	if err != nil {
		return err
	}
	if errResp != nil {
		msg := errResp.Error
		if msg == "" {
			msg = "An unexpected error occurred"
		}
		fmt.Printf("%sSync Failed: %s%s\n", colorRed, msg, colorReset)
		return cli.Exit("", 1)
	}

	var result syncResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return err
	}

	color := indicatorColor(result.Indicator)
	fmt.Printf("%s%s%s\n", color, result.Message, colorReset)

	var record templateRecord
	if err := getJSON(c, "/api/templates/"+name, &record); err != nil {
		return err
	}
	printTemplate(record)
	return nil
}

// runFetch is the list-view action: fetch, show the notification when there
// is one, then always refresh the list. The --menu variant surfaces the raw
// error instead of the generic guidance.
func runFetch(c *cli.Context) error {
	fmt.Println("Fetching templates from WhatsApp...")

	body, errResp, err := postJSON(c, "/api/templates/fetch")
	if err != nil {
		return err
	}
	if errResp != nil {
		if c.Bool("menu") {
			return cli.Exit(errResp.Error, 1)
		}
		fmt.Printf("%sFetch Failed. Please check the error logs for details.%s\n", colorRed, colorReset)
		return cli.Exit("", 1)
	}

	var result fetchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return err
	}
	if result.Message != "" {
		fmt.Printf("%s%s%s\n", colorGreen, result.Message, colorReset)
	}

	return runList(c)
}

func runList(c *cli.Context) error {
	var records []templateRecord
	if err := getJSON(c, "/api/templates", &records); err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No templates stored.")
		return nil
	}

	fmt.Printf("%-30s %-20s %-12s %-10s %s\n", "NAME", "ACCOUNT", "STATUS", "LANGUAGE", "CATEGORY")
	for _, r := range records {
		fmt.Printf("%-30s %-20s %-12s %-10s %s\n",
			r.Name, r.WhatsAppAccount, r.Status, r.LanguageCode, r.Category)
	}
	return nil
}

func printTemplate(r templateRecord) {
	fmt.Printf("Name:     %s\n", r.Name)
	fmt.Printf("Account:  %s\n", r.WhatsAppAccount)
	fmt.Printf("Status:   %s\n", r.Status)
	fmt.Printf("Language: %s\n", r.LanguageCode)
	fmt.Printf("Category: %s\n", r.Category)
	if r.ProviderID != "" {
		fmt.Printf("Meta ID:  %s\n", r.ProviderID)
	}
}
