package config

// DefaultConfig returns the built-in catalog for the reference testbed:
// three slices (IoT, vehicle, restricted), six QoS profiles, their use-case
// bindings and the arbitration presets for the shared edge bottleneck.
func DefaultConfig() *Config {
	return &Config{
		General: &GeneralConfig{
			StepTimeoutSeconds: DefaultStepTimeoutSeconds,
			APIListen:          DefaultAPIListen,
		},
		Profiles: []*ProfileConfig{
			{
				ProfileID:     "iot-default",
				Name:          "IoT Default",
				Description:   "Low bandwidth, tolerant latency, typical sensor data",
				BandwidthDown: "5mbit",
				BandwidthUp:   "2mbit",
				LatencyMs:     50,
				JitterMs:      10,
				LossPct:       0,
				Priority:      3,
			},
			{
				ProfileID:     "vehicle-default",
				Name:          "Vehicle / URLLC",
				Description:   "High bandwidth, ultra-low latency, safety-critical",
				BandwidthDown: "50mbit",
				BandwidthUp:   "25mbit",
				LatencyMs:     5,
				JitterMs:      2,
				LossPct:       0,
				Priority:      1,
			},
			{
				ProfileID:     "restricted-default",
				Name:          "Restricted Internal",
				Description:   "Limited bandwidth, internal only, no internet access",
				BandwidthDown: "2mbit",
				BandwidthUp:   "1mbit",
				LatencyMs:     20,
				JitterMs:      5,
				LossPct:       0,
				Priority:      4,
			},
			{
				ProfileID:     "embb",
				Name:          "Enhanced Mobile Broadband",
				Description:   "Maximum bandwidth for data-heavy applications",
				BandwidthDown: "100mbit",
				BandwidthUp:   "50mbit",
				LatencyMs:     10,
				JitterMs:      3,
				LossPct:       0,
				Priority:      2,
			},
			{
				ProfileID:     "emergency",
				Name:          "Emergency / Mission-Critical",
				Description:   "Highest priority, guaranteed bandwidth, minimal latency",
				BandwidthDown: "30mbit",
				BandwidthUp:   "15mbit",
				LatencyMs:     2,
				JitterMs:      1,
				LossPct:       0,
				Priority:      0,
				DSCP:          46,
			},
			{
				ProfileID:     "degraded",
				Name:          "Degraded Network Simulation",
				Description:   "Simulate poor network conditions for testing",
				BandwidthDown: "1mbit",
				BandwidthUp:   "512kbit",
				LatencyMs:     200,
				JitterMs:      50,
				LossPct:       5,
				Priority:      5,
			},
		},
		Slices: []*SliceConfig{
			{
				SliceID: "slice1",
				Subnet:  "10.45.0.0/16",
				Access:  &EndpointConfig{Host: "ue1", Device: "eth0", Netns: "/run/netns/ue1"},
				Tunnel:  &EndpointConfig{Host: "ue1", Device: "uesimtun0", Netns: "/run/netns/ue1"},
				Core:    &EndpointConfig{Host: "upf1", Device: "ogstun", Netns: "/run/netns/upf1"},
			},
			{
				SliceID: "slice2",
				Subnet:  "10.46.0.0/16",
				Access:  &EndpointConfig{Host: "ue2", Device: "eth0", Netns: "/run/netns/ue2"},
				Tunnel:  &EndpointConfig{Host: "ue2", Device: "uesimtun0", Netns: "/run/netns/ue2"},
				Core:    &EndpointConfig{Host: "upf2", Device: "ogstun", Netns: "/run/netns/upf2"},
			},
			{
				SliceID: "slice3",
				Subnet:  "10.47.0.0/16",
				Access:  &EndpointConfig{Host: "ue3", Device: "eth0", Netns: "/run/netns/ue3"},
				Tunnel:  &EndpointConfig{Host: "ue3", Device: "uesimtun0", Netns: "/run/netns/ue3"},
				Core:    &EndpointConfig{Host: "upf3", Device: "ogstun", Netns: "/run/netns/upf3"},
			},
		},
		UseCases: []*UseCaseConfig{
			{UseCaseID: "iot-environment", Slice: "slice1", Profile: "iot-default"},
			{UseCaseID: "smart-city", Slice: "slice1", Profile: "iot-default"},
			{UseCaseID: "ehealth", Slice: "slice1", Profile: "iot-default"},
			{UseCaseID: "vehicle-gps", Slice: "slice2", Profile: "vehicle-default"},
			{UseCaseID: "vehicle-alerts", Slice: "slice2", Profile: "emergency"},
			{UseCaseID: "restricted-iot", Slice: "slice3", Profile: "restricted-default"},
		},
		Presets: []*PresetConfig{
			{
				PresetID:    "iot-first",
				Name:        "IoT Priority (Default)",
				Description: "IoT gets guaranteed bandwidth; Vehicle gets remainder",
				TotalRate:   "20mbit",
				ClassA:      &PresetClassConfig{Rate: "14mbit", Ceil: "18mbit", Prio: 1},
				ClassB:      &PresetClassConfig{Rate: "4mbit", Ceil: "15mbit", Prio: 2},
			},
			{
				PresetID:    "equal",
				Name:        "Equal Share",
				Description: "Both slices get equal bandwidth (baseline comparison)",
				TotalRate:   "20mbit",
				ClassA:      &PresetClassConfig{Rate: "10mbit", Ceil: "15mbit", Prio: 1},
				ClassB:      &PresetClassConfig{Rate: "10mbit", Ceil: "15mbit", Prio: 1},
			},
			{
				PresetID:    "vehicle-first",
				Name:        "Vehicle Priority",
				Description: "Vehicle gets priority (for comparison)",
				TotalRate:   "20mbit",
				ClassA:      &PresetClassConfig{Rate: "4mbit", Ceil: "15mbit", Prio: 2},
				ClassB:      &PresetClassConfig{Rate: "14mbit", Ceil: "18mbit", Prio: 1},
			},
			{
				PresetID:    "emergency",
				Name:        "Emergency Override",
				Description: "IoT gets near-total bandwidth (emergency scenario)",
				TotalRate:   "20mbit",
				ClassA:      &PresetClassConfig{Rate: "17mbit", Ceil: "19mbit", Prio: 0},
				ClassB:      &PresetClassConfig{Rate: "1mbit", Ceil: "5mbit", Prio: 3},
			},
		},
		Bottleneck: &BottleneckConfig{
			Endpoint: &EndpointConfig{Host: "edge", Device: "eth0", Netns: "/run/netns/edge"},
			ClassA:   &EndpointConfig{Host: "ue1", Device: "eth0", Netns: "/run/netns/ue1"},
			ClassB:   &EndpointConfig{Host: "ue2", Device: "eth0", Netns: "/run/netns/ue2"},
		},
	}
}
