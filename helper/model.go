package helper

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

const modelDir = "./models"

// PrepareModel downloads the model if it doesn't exist and returns the model path.
// Model names like "org/name" are stored under ./models/org_name.
func PrepareModel(modelName string, onnxFilePath string) (string, error) {
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	} else if !os.IsNotExist(err) {
		return "", NewError("failed to stat model directory", err)
	}

	if err := os.MkdirAll(modelDir, 0750); err != nil {
		return "", NewError("failed to create model directory", err)
	}

	downloadOptions := hugot.NewDownloadOptions()
	if onnxFilePath != "" {
		downloadOptions.OnnxFilePath = onnxFilePath
	}
	downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
	if err != nil {
		return "", NewError("failed to download model", err)
	}

	return downloadedPath, nil
}
