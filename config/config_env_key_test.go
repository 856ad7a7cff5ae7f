package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"schedule": map[string]any{
			"maxBatchSize": 400,
			"leaseTTL":     "15m",
		},
		"payroll": map[string]any{
			"anchorDate": "2025-04-13",
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"firebase": map[string]any{
			"credentialsPath": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "SCHEDULE_MAXBATCHSIZE", want: "schedule.maxBatchSize"},
		{envKey: "SCHEDULE_LEASETTL", want: "schedule.leaseTTL"},
		{envKey: "PAYROLL_ANCHORDATE", want: "payroll.anchorDate"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "FIREBASE_CREDENTIALSPATH", want: "firebase.credentialsPath"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
