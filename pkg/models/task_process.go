package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sensestream/sensestream-server/pkg/audio"
	"github.com/sensestream/sensestream-server/pkg/config"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

// processSlots bounds how many slicing pipelines run at once.
var (
	processSlots     chan struct{}
	processSlotsOnce sync.Once
)

// ProcessTask runs the offline part of the pipeline for an uploaded
// task: decode, preprocess, slice and persist the segments. The task
// ends in ready state so its segments can be submitted for streaming
// transcription.
func (m *TaskModel) ProcessTask(ctx context.Context, taskId string) error {
	processSlotsOnce.Do(func() {
		processSlots = make(chan struct{}, m.app.Processing.MaxConcurrentTasks)
	})
	select {
	case processSlots <- struct{}{}:
		defer func() { <-processSlots }()
	case <-ctx.Done():
		return ctx.Err()
	}

	task, err := m.rs.GetTask(taskId)
	if err != nil {
		return err
	}
	if task == nil {
		return errors.New(config.RequestedTaskNotExist)
	}

	timeout := time.Duration(m.app.Processing.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := m.rs.UpdateTaskStatus(taskId, config.TaskStatusSlicing); err != nil {
		return err
	}

	started := time.Now()
	segments, duration, err := m.sliceTask(ctx, task)
	if err != nil {
		_ = m.rs.MarkTaskFailed(taskId, err.Error())
		return err
	}

	err = m.rs.UpdateTaskFields(taskId, map[string]interface{}{
		"status":         config.TaskStatusReady,
		"duration":       duration,
		"total_segments": int64(len(segments)),
	})
	if err != nil {
		return err
	}

	m.logger.Infoln("task", taskId, "sliced into", len(segments), "segments in", time.Since(started).Round(time.Millisecond))
	return nil
}

func (m *TaskModel) sliceTask(ctx context.Context, task *redisservice.TaskInfo) ([]*redisservice.SegmentInfo, float64, error) {
	clip, err := m.loadClip(ctx, task.FilePath)
	if err != nil {
		return nil, 0, err
	}

	duration := clip.Duration()
	maxDuration := m.app.Audio.MaxDurationMinutes * 60
	if duration > maxDuration {
		return nil, 0, fmt.Errorf("%s (%.0f minutes max)", config.AudioTooLong, m.app.Audio.MaxDurationMinutes)
	}

	clip = m.preprocessor.Process(clip)
	slices := m.slicer.Slice(clip)

	segmentDir := filepath.Join(filepath.Dir(task.FilePath), "segments")
	if err := os.MkdirAll(segmentDir, 0755); err != nil {
		return nil, 0, err
	}

	infos := make([]*redisservice.SegmentInfo, 0, len(slices))
	for _, seg := range slices {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		segmentId := fmt.Sprintf("%s_segment_%d", task.TaskId, seg.Index)
		segPath := filepath.Join(segmentDir, segmentId+".wav")
		clip := &audio.Clip{
			Samples:    seg.Samples,
			SampleRate: seg.SampleRate,
			Channels:   1,
		}
		if err := audio.WriteWAVFile(segPath, clip); err != nil {
			return nil, 0, err
		}

		info := &redisservice.SegmentInfo{
			SegmentId:     segmentId,
			TaskId:        task.TaskId,
			SegmentIndex:  int64(seg.Index),
			StartTime:     seg.Start,
			EndTime:       seg.End,
			ActualEndTime: seg.ActualEnd,
			FilePath:      segPath,
			Status:        config.SegmentStatusCreated,
		}
		if seg.Quality != nil {
			info.QualityScore = seg.Quality.Score
			info.HasSpeech = seg.Quality.HasSpeech
		}
		infos = append(infos, info)
	}

	if err := m.rs.CreateSegments(task.TaskId, infos); err != nil {
		return nil, 0, err
	}
	return infos, duration, nil
}

// loadClip decodes the source file, converting through ffmpeg first when
// it is not already wav.
func (m *TaskModel) loadClip(ctx context.Context, filePath string) (*audio.Clip, error) {
	if strings.ToLower(filepath.Ext(filePath)) == ".wav" {
		return audio.ReadWAVFile(filePath)
	}

	converted, err := m.convertToWav(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return audio.ReadWAVFile(converted)
}

func (m *TaskModel) convertToWav(ctx context.Context, filePath string) (string, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", errors.New("ffmpeg not found, required for non-wav input")
	}

	outPath := strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".wav"
	cmd := exec.CommandContext(ctx, ffmpeg, "-y", "-i", filePath,
		"-ar", fmt.Sprintf("%d", m.app.AudioPreprocessing.TargetSampleRate),
		"-ac", fmt.Sprintf("%d", m.app.AudioPreprocessing.TargetChannels),
		"-sample_fmt", "s16",
		outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		m.logger.Errorln("ffmpeg conversion failed for", filePath, ":", strings.TrimSpace(string(out)))
		return "", fmt.Errorf("audio conversion failed: %w", err)
	}
	return outPath, nil
}
