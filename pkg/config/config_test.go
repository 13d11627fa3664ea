package config

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNewAppliesDefaults(t *testing.T) {
	var appConfig AppConfig
	yamlFile, err := os.ReadFile("../../config_sample.yaml")
	if err != nil {
		t.Fatal(err)
	}

	err = yaml.Unmarshal(yamlFile, &appConfig)
	if err != nil {
		t.Fatal(err)
	}
	appConfig.RootWorkingDir = t.TempDir()
	appConfig.Audio.TempDir = "./temp"

	cnf, err := New(&appConfig)
	if err != nil {
		t.Fatal(err)
	}

	if cnf.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cnf.Server.Port)
	}
	if cnf.Audio.SegmentLength != 10.0 {
		t.Errorf("expected default segment length 10.0, got %f", cnf.Audio.SegmentLength)
	}
	if cnf.Streaming.BatchSize != 128 {
		t.Errorf("expected default batch size 128, got %d", cnf.Streaming.BatchSize)
	}
	if cnf.Streaming.FirstSegmentPriority <= cnf.Streaming.NormalSegmentPriority {
		t.Error("first segment priority should be higher than normal priority")
	}
	if cnf.AudioSegmentation.MinSegmentLength != 3.0 {
		t.Errorf("expected min segment length 3.0, got %f", cnf.AudioSegmentation.MinSegmentLength)
	}
	if _, err := os.Stat(cnf.Audio.TempDir); err != nil {
		t.Errorf("temp dir should have been created: %v", err)
	}

	if GetConfig() != cnf {
		t.Error("GetConfig should return the configured instance")
	}
}

func TestFormatDBTable(t *testing.T) {
	dbTablePrefix = "sns_"
	defer func() { dbTablePrefix = "" }()

	if FormatDBTable("transcription_tasks") != "sns_transcription_tasks" {
		t.Error("prefix wasn't applied")
	}
}
