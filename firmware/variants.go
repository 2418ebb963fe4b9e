package firmware

// Per-firmware definitions: known versions, stock settings and the
// arguments each version recognizes. The set is closed; selecting a
// type/version pair outside it is a configuration error.

var marlin1Definition = &definition{
	typ: Marlin1,
	releases: []release{
		{
			version: "1.1.9.1",
			defaults: Settings{
				MMPerArcSegment: 1.0,
				NArcCorrection:  25,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
	},
}

var marlin2Definition = &definition{
	typ: Marlin2,
	releases: []release{
		{
			version: "2.0.9.1",
			defaults: Settings{
				MMPerArcSegment:    1.0,
				MinMMPerArcSegment: 0.1,
				MinArcSegments:     24,
				NArcCorrection:     25,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgMinMMPerArcSegment,
				ArgMinArcSegments,
				ArgArcSegmentsPerSec,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
		{
			version: "2.0.9.2",
			defaults: Settings{
				MMPerArcSegment:    1.0,
				MinMMPerArcSegment: 0.1,
				MinArcSegments:     24,
				NArcCorrection:     25,
			},
			// 2.0.9.2 renamed the segment length settings; the old
			// names remain as aliases.
			arguments: []string{
				ArgMaxArcSegmentMM,
				ArgMinArcSegmentMM,
				ArgMinCircleSegments,
				ArgArcSegmentsPerSec,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
				ArgMMPerArcSegment,
				ArgMinMMPerArcSegment,
				ArgMinArcSegments,
			},
		},
	},
}

var repetierDefinition = &definition{
	typ: Repetier,
	releases: []release{
		{
			version: "1.0.4",
			defaults: Settings{
				MMPerArcSegment: 1.0,
				NArcCorrection:  25,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
		{
			version: "1.0.5",
			defaults: Settings{
				MMPerArcSegment: 1.0,
				ArcSegmentsPerR: 0,
				NArcCorrection:  25,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgArcSegmentsPerR,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
	},
}

var prusaDefinition = &definition{
	typ: Prusa,
	releases: []release{
		{
			version: "3.10.0",
			defaults: Settings{
				MMPerArcSegment: 1.0,
				NArcCorrection:  25,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
		{
			version: "3.11.0",
			defaults: Settings{
				MMPerArcSegment:    1.0,
				MinMMPerArcSegment: 0.1,
				MinArcSegments:     24,
				NArcCorrection:     25,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgMinMMPerArcSegment,
				ArgMinArcSegments,
				ArgArcSegmentsPerSec,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
	},
}

var smoothiewareDefinition = &definition{
	typ: Smoothieware,
	releases: []release{
		{
			version: "edge",
			defaults: Settings{
				MMPerArcSegment: 0,
				MMMaxArcError:   0.01,
				// Smoothieware always applies exact rotation.
				NArcCorrection: 0,
			},
			arguments: []string{
				ArgMMPerArcSegment,
				ArgMMMaxArcError,
				ArgG90InfluencesExtruder,
			},
		},
	},
}
