package models

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sensestream/sensestream-server/pkg/audio"
	"github.com/sensestream/sensestream-server/pkg/config"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

// SaveUploadedFile validates and stores one uploaded audio file under the
// task's working directory and registers the task.
func (m *UploadModel) SaveUploadedFile(fh *multipart.FileHeader) (*UploadedFileInfo, error) {
	maxSize := int64(m.app.Audio.MaxFileSizeMB) * 1024 * 1024
	if fh.Size > maxSize {
		return nil, fmt.Errorf("%s (%dMB max)", config.FileTooLarge, m.app.Audio.MaxFileSizeMB)
	}

	if err := m.validateExtension(fh.Filename); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	taskId := uuid.NewString()
	taskDir := filepath.Join(m.app.Audio.TempDir, taskId)
	if err := os.MkdirAll(taskDir, 0755); err != nil {
		return nil, err
	}

	filePath := filepath.Join(taskDir, filepath.Base(fh.Filename))
	written, err := m.copyWithLimit(src, filePath, maxSize)
	if err != nil {
		_ = os.RemoveAll(taskDir)
		return nil, err
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
		FileName: fh.Filename,
		FilePath: filePath,
		FileSize: written,
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

	m.logger.Infoln("uploaded file", info.FileName, "as task", taskId)
	return info, nil
}

func (m *UploadModel) validateExtension(fileName string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	for _, f := range m.app.Audio.SupportedFormats {
		if ext == strings.ToLower(f) {
			return nil
		}
	}
	return fmt.Errorf("%s: %s", config.UnsupportedAudioFormat, ext)
}

// copyWithLimit streams the upload to disk in chunks and aborts as soon
// as the size limit is crossed, so a lying Content-Length cannot fill
// the disk.
func (m *UploadModel) copyWithLimit(src io.Reader, dest string, maxSize int64) (int64, error) {
	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	chunkSize := int64(m.app.Processing.ChunkSizeMB) * 1024 * 1024
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, rErr := src.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > maxSize {
				return written, fmt.Errorf("%s (%dMB max)", config.FileTooLarge, m.app.Audio.MaxFileSizeMB)
			}
			if _, wErr := dst.Write(buf[:n]); wErr != nil {
				return written, wErr
			}
		}
		if rErr == io.EOF {
			return written, nil
		}
		if rErr != nil {
			return written, rErr
		}
	}
}

func (m *UploadModel) validateContent(filePath string) error {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return err
	}

	if strings.HasPrefix(mtype.String(), "audio/") || strings.HasPrefix(mtype.String(), "video/") {
		return nil
	}
	// some encoders produce containers detected as octet-stream
	if mtype.Is("application/octet-stream") {
		return nil
	}

	return fmt.Errorf("%s: %s", config.UnsupportedAudioFormat, mtype.String())
}

func (m *UploadModel) probeDuration(filePath string) (float64, error) {
	if strings.ToLower(filepath.Ext(filePath)) != ".wav" {
		// non-wav containers are measured after decoding
		return 0, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := make([]byte, 64)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	duration, err := audio.ProbeDuration(header[:n])
	if err != nil {
		return 0, err
	}

	maxDuration := m.app.Audio.MaxDurationMinutes * 60
	if duration > maxDuration {
		return 0, fmt.Errorf("%s (%.0f minutes max)", config.AudioTooLong, m.app.Audio.MaxDurationMinutes)
	}
	return duration, nil
}
