package config

import (
	"fmt"
	"strings"
)

// multiFlag collects the repeated -registrations-file flags and the
// registrations-file list of the config file.
type multiFlag []string

func (f *multiFlag) String() string {
	return strings.Join(*f, " ")
}

func (f *multiFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty registrations file")
	}

	*f = append(*f, value)
	return nil
}

func (f *multiFlag) UnmarshalYAML(unmarshal func(any) error) error {
	var values []string
	if err := unmarshal(&values); err != nil {
		return err
	}

	*f = nil
	for _, v := range values {
		if err := f.Set(v); err != nil {
			return err
		}
	}

	return nil
}
