package config

// paramID identifies a param within a source
type paramID struct {
	key     string
	service string
}

func (p paramID) String() string {
	return "{key: " + p.key + "; service: " + p.service + "}"
}

type param struct {
	paramID
	newValue func() paramValue
}

// StringParam represents params of string type
type StringParam struct {
	param
}

func newStringParam(key string, service string) StringParam {
	return StringParam{param{
		paramID:  paramID{key: key, service: service},
		newValue: func() paramValue { return StringVal{val: new(string)} },
	}}
}

// IntParam represents params of int type
type IntParam struct {
	param
}

func newIntParam(key string, service string) IntParam {
	return IntParam{param{
		paramID:  paramID{key: key, service: service},
		newValue: func() paramValue { return IntVal{val: new(int)} },
	}}
}

// BoolParam represents params of bool type
type BoolParam struct {
	param
}

func newBoolParam(key string, service string) BoolParam {
	return BoolParam{param{
		paramID:  paramID{key: key, service: service},
		newValue: func() paramValue { return BoolVal{val: new(bool)} },
	}}
}
