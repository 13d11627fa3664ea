package models

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/google/uuid"
	"github.com/sensestream/sensestream-server/pkg/config"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

// SaveFromUrl downloads a remote audio file into a new task directory.
// The size limit is enforced both against the advertised length and the
// actual transferred bytes.
func (m *UploadModel) SaveFromUrl(ctx context.Context, rawUrl string) (*UploadedFileInfo, error) {
	u, err := url.ParseRequestURI(rawUrl)
	if err != nil {
		return nil, errors.New("invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("only http or https urls are supported")
	}

	fileName := filepath.Base(u.Path)
	if err := m.validateExtension(fileName); err != nil {
		return nil, err
	}

	taskId := uuid.NewString()
	taskDir := filepath.Join(m.app.Audio.TempDir, taskId)
	if err := os.MkdirAll(taskDir, 0755); err != nil {
		return nil, err
	}

	filePath := filepath.Join(taskDir, fileName)
	req, err := grab.NewRequest(filePath, rawUrl)
	if err != nil {
		_ = os.RemoveAll(taskDir)
		return nil, err
	}
	req = req.WithContext(ctx)

	maxSize := int64(m.app.Audio.MaxFileSizeMB) * 1024 * 1024
	resp := grab.DefaultClient.Do(req)

	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			if resp.BytesComplete() > maxSize {
				resp.Cancel()
				_ = os.RemoveAll(taskDir)
				return nil, fmt.Errorf("%s (%dMB max)", config.FileTooLarge, m.app.Audio.MaxFileSizeMB)
			}
		case <-resp.Done:
			if err := resp.Err(); err != nil {
				_ = os.RemoveAll(taskDir)
				return nil, fmt.Errorf("download failed: %w", err)
			}
			return m.registerDownloaded(taskId, taskDir, fileName, filePath, maxSize)
		}
	}
}

func (m *UploadModel) registerDownloaded(taskId, taskDir, fileName, filePath string, maxSize int64) (*UploadedFileInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		_ = os.RemoveAll(taskDir)
		return nil, err
	}
	if stat.Size() > maxSize {
		_ = os.RemoveAll(taskDir)
		return nil, fmt.Errorf("%s (%dMB max)", config.FileTooLarge, m.app.Audio.MaxFileSizeMB)
	}

	if err := m.validateContent(filePath); err != nil {
		_ = os.RemoveAll(taskDir)
		return nil, err
	}

	duration, err := m.probeDuration(filePath)
	if err != nil {
		_ = os.RemoveAll(taskDir)
		return nil, err
	}

	info := &UploadedFileInfo{
		TaskId:   taskId,
		FileName: fileName,
		FilePath: filePath,
		FileSize: stat.Size(),
		Duration: duration,
	}

	err = m.rs.CreateTask(&redisservice.TaskInfo{
		TaskId:   taskId,
		FileName: info.FileName,
		FilePath: info.FilePath,
		FileSize: info.FileSize,
		Duration: info.Duration,
		Status:   config.TaskStatusUploaded,
	})
	if err != nil {
		_ = os.RemoveAll(taskDir)
		return nil, err
	}

	m.logger.Infoln("downloaded", info.FileName, "as task", taskId)
	return info, nil
}
