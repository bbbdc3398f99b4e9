// Package environment names the deployment environment the service runs in.
// The value comes from APP_ENV and drives logger presets and whether the
// tenant extractor honours localhost development overrides.
package environment
