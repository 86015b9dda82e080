// uploader pre-compresses a local photo and posts it to the ingestion
// endpoint, the command-line analogue of the browser-side compressor.
package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/propstack/property-media/pkg/precompress"
	"github.com/spf13/cobra"
)

var (
	serverURL     string
	sessionCookie string
	maxSizeMB     float64
	quality       float64
	skipCompress  bool
)

var rootCmd = &cobra.Command{
	Use:   "uploader <image-file>",
	Short: "Compress and upload a property photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the media server")
	rootCmd.Flags().StringVar(&sessionCookie, "session", "", "admin session cookie value")
	rootCmd.Flags().Float64Var(&maxSizeMB, "max-size-mb", precompress.DefaultMaxSizeMB, "pre-compression size budget in MB")
	rootCmd.Flags().Float64Var(&quality, "quality", precompress.DefaultQuality, "initial re-encode quality (0-1)")
	rootCmd.Flags().BoolVar(&skipCompress, "skip-compress", false, "upload the file as-is")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if !skipCompress {
		result, err := precompress.Compress(data, precompress.Options{
			MaxSizeMB: maxSizeMB,
			Quality:   quality,
		})
		if err != nil {
			return fmt.Errorf("pre-compress: %w", err)
		}
		fmt.Printf("pre-compressed %d -> %d bytes (%.2f%% smaller, quality %.2f)\n",
			result.OriginalSize, result.CompressedSize, result.ReductionPercent, result.Quality)
		data = result.Data
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/images", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "admin_session", Value: sessionCookie})
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n", resp.Status, respBody)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
