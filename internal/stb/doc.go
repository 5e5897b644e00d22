// Package stb implements the Spatio-Temporal Behavioral Outlier Factor
// (ST-BOF) and the ST-BDBCAN density-based clustering algorithm for
// geo-located, time-stamped sensor observations.
//
// ST-BOF scores how behaviorally outlying each observation is relative to
// its spatio-temporal neighborhood: neighborhoods are defined by a weighted
// combination of physical sensor distance and time difference, while density
// is measured in behavioral space (e.g. traffic flow and speed). ST-BDBCAN
// consumes those scores and groups observations whose behavioral
// reachability densities fall within a tolerance band of each other,
// labelling the rest as noise.
//
// Both stages are deterministic: identical inputs and parameters always
// produce identical outlier factors and cluster labels.
package stb
