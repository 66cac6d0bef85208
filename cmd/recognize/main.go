// recognize sends a photo to the detection service and prints the found
// tools. Useful for checking the service and threshold without the kiosk UI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/avialab/toolkiosk/internal/config"
	"github.com/avialab/toolkiosk/internal/recognition"
)

func main() {
	var confidence float64
	var toolkitID int

	flag.Float64Var(&confidence, "confidence", 0.5, "detection threshold, strictly between 0 and 1")
	flag.IntVar(&toolkitID, "toolkit", 1, "toolkit id")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: recognize [-confidence 0.5] [-toolkit 1] <image.jpg>\n")
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	config.LoadEnvFile()

	predictURL := os.Getenv("KIOSK_PREDICT_URL")
	if predictURL == "" {
		fmt.Fprintf(os.Stderr, "KIOSK_PREDICT_URL not set\n")
		os.Exit(1)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}

	client := recognition.NewClient(recognition.ClientOpts{BaseURL: predictURL})
	result, err := client.Recognize(context.Background(), data, imagePath, toolkitID, confidence)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recognition failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	fmt.Printf("\n%d tools found, hand_check=%v\n", len(result.Tools), result.HandCheck)
}
