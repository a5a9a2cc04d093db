// Package manifest edits container environment variables in Kubernetes
// Deployment manifests.
//
// The manifest is parsed into a yaml.v3 node tree. Edits are applied to the
// tree and, where possible, also recorded as byte patches against the
// original text so that comments, key order, quoting and indentation of
// untouched lines survive:
//
//	spec:
//	  template:
//	    spec:
//	      containers:
//	        - name: app
//	          env:
//	            - name: EXISTING   # kept as written
//	              value: "1"
//	            - name: ADDED      # appended by MergeEnv
//	              value: x
//
// When the patched text does not decode to the same data as the edited tree
// (flow-style lists, multi-line scalars, anchors), the tree is re-encoded
// instead and MergeResult.Preserved is false.
//
// # Errors
//
// Failures wrap one of the package sentinels so callers can branch with
// errors.Is:
//
//	ErrInvalidYAML          input is not a single YAML document
//	ErrNotDeployment        kind is missing or not Deployment
//	ErrBadDeploymentFormat  containers path or env entries are malformed
//	ErrContainerNotFound    --container-name matched nothing
//	ErrContainerNameNotSet  several containers and no name given
//	ErrOverwriteDisabled    a variable exists and overwriting is off
package manifest
