package prompts

import "github.com/polisai/archwise/pkg/compliance"

// architectureText takes project type, tech stack, database, message queue
// and cache.
const architectureText = `Create a %s architecture using %s with enterprise standards:

CORE SERVICES SETUP:
- Implement Clean Architecture with separate layers (presentation, application, domain, infrastructure)
- Set up API Gateway with rate limiting, authentication, and request routing
- Configure service discovery and load balancing
- Implement %s database per service pattern with connection pooling
- Set up %s for asynchronous communication with dead letter queues
- Configure %s for distributed caching with TTL policies

ENTERPRISE PATTERNS:
- Circuit breaker pattern for external service calls with fallback mechanisms
- Retry logic with exponential backoff for transient failures
- Health check endpoints for all services (/health, /ready, /metrics)
- Correlation ID propagation across all service calls
- Structured logging with JSON format and correlation tracking

CODE QUALITY STANDARDS:
- Implement dependency injection container
- Set up exception handling middleware with proper error responses
- Create base classes for controllers, services, and repositories
- Include input validation with custom validators
- Set up automatic API documentation generation`

const securityText = `Implement comprehensive enterprise security framework:

AUTHENTICATION & AUTHORIZATION:
- OAuth 2.0 / OpenID Connect integration with JWT tokens
- Refresh token rotation with secure storage
- Role-based access control (RBAC) with fine-grained permissions
- API key management for service-to-service communication
- Session management with secure cookies and CSRF protection

DATA PROTECTION:
- AES-256 encryption for sensitive data at rest
- TLS 1.3 for all communications in transit
- Input validation and sanitization for all endpoints (OWASP guidelines)
- SQL injection prevention with parameterized queries
- XSS protection with content security policies

SECURITY MONITORING:
- Audit logging for all authentication attempts and data modifications
- Failed login attempt detection with account lockout policies
- Security event correlation and alerting
- Vulnerability scanning integration in CI/CD pipeline
- Security headers implementation (HSTS, CSP, X-Frame-Options)`

// complianceText takes the joined framework labels and the requirement
// blocks.
const complianceText = `Implement comprehensive compliance framework for: %s

%s

COMPLIANCE ARCHITECTURE PATTERNS:
- Implement compliance-aware data models with classification tags
- Create audit event sourcing for immutable compliance trails
- Set up automated compliance monitoring and reporting
- Implement data lifecycle management with automated retention/deletion
- Create compliance dashboards and violation alerting
- Set up regular compliance scanning and assessment automation

DATA GOVERNANCE FRAMEWORK:
- Data classification system (Public, Internal, Confidential, Restricted)
- Data lineage tracking and impact analysis
- Automated policy enforcement at application and database levels
- Privacy-preserving data processing techniques (anonymization, pseudonymization)
- Cross-border data transfer controls and documentation
- Vendor risk assessment and third-party compliance validation

COMPLIANCE TESTING:
- Automated compliance rule testing in CI/CD pipeline
- Compliance regression testing for policy changes
- Data privacy impact testing for new features
- Security control effectiveness testing
- Compliance audit preparation and evidence collection automation`

const testingText = `Set up comprehensive testing strategy following enterprise standards:

UNIT TESTING (Target: 90% coverage):
- Test framework setup with parallel execution
- Mock all external dependencies (databases, APIs, message queues)
- Test data builders and fixtures for consistent test scenarios
- Parameterized tests for edge cases and boundary conditions
- Performance unit tests for critical business logic

INTEGRATION TESTING:
- API contract testing for all endpoints with request/response validation
- Database integration tests with test containers
- Message queue integration testing with embedded brokers
- External service integration tests with WireMock
- Cross-service communication testing

END-TO-END TESTING:
- Critical user journey automation covering main business flows
- Browser compatibility testing for web interfaces
- API workflow testing covering complete business processes
- Performance testing with load scenarios and stress testing
- Security testing including OWASP Top 10 validation

QUALITY GATES:
- Automated test execution in CI pipeline
- Code coverage reporting with quality gates
- Test result aggregation and reporting
- Flaky test detection and management`

// cicdText takes the deployment target.
const cicdText = `Create enterprise-grade CI/CD pipeline with %s:

CONTINUOUS INTEGRATION PIPELINE:
stages:
  - code-quality:
      - Static code analysis (SonarQube)
      - Dependency vulnerability scanning
      - Code formatting and linting validation
      - Unit test execution with coverage reporting

  - build-package:
      - Multi-stage Docker build with layer optimization
      - Container security scanning (Trivy/Snyk)
      - Artifact versioning with semantic versioning
      - Package signing and attestation

  - automated-testing:
      - Integration test suite execution
      - Performance benchmark validation
      - Security testing (SAST/DAST)
      - API contract validation

CONTINUOUS DEPLOYMENT STRATEGY:
- Blue-green deployment configuration for zero-downtime releases
- Canary deployment with automated rollback triggers
- Feature flag integration for gradual feature rollouts
- Database migration automation with rollback procedures
- Infrastructure as Code with Terraform/Helm charts
- Environment promotion pipeline (DEV → QA → STAGING → PROD)

MONITORING INTEGRATION:
- Deployment success/failure notifications
- Automated health checks post-deployment
- Performance monitoring during deployments
- Rollback automation based on error rate thresholds`

// observabilityText takes the monitoring stack.
const observabilityText = `Implement comprehensive observability with %s:

LOGGING STRATEGY:
- Structured JSON logging with correlation IDs
- Centralized log aggregation (ELK Stack or similar)
- Log levels and filtering for production environments
- PII data scrubbing from logs automatically
- Log retention policies based on compliance requirements

METRICS AND MONITORING:
- Business metrics tracking (KPIs, conversion rates, user activity)
- Technical health indicators (response time, throughput, error rates)
- Infrastructure metrics (CPU, memory, disk, network)
- Custom application metrics for business logic performance
- SLA/SLO monitoring with alerting thresholds

DISTRIBUTED TRACING:
- Request correlation across all microservices
- Performance bottleneck identification in service chains
- Error propagation tracking and root cause analysis
- Dependency mapping and service interaction visualization

ALERTING AND INCIDENT RESPONSE:
- Multi-level alerting (warning, critical, emergency)
- Escalation procedures with on-call rotations
- Automated incident creation and tracking
- Runbook automation for common issues
- Post-incident analysis and improvement tracking`

const documentationText = `Create comprehensive documentation suite for enterprise standards:

PROJECT DOCUMENTATION:
- README.md with quick start guide, prerequisites, and local development setup
- CONTRIBUTING.md with code standards, pull request process, and development workflow
- CHANGELOG.md with versioning strategy and release notes format
- LICENSE file and compliance documentation
- Project structure documentation with folder organization rationale

ARCHITECTURE DOCUMENTATION:
- Architecture Decision Records (ADRs) template and initial decisions
- System architecture diagrams (C4 model: Context, Container, Component, Code)
- Data flow diagrams and entity relationship diagrams
- API design guidelines and OpenAPI/Swagger specifications
- Service dependencies and integration points documentation
- Security architecture and threat model documentation

CODE DOCUMENTATION STANDARDS:
- Inline code documentation standards (GoDoc, JSDoc, Javadoc, etc.)
- Function and class documentation requirements
- API endpoint documentation with examples
- Database schema documentation with migration guides
- Configuration management documentation
- Error codes and troubleshooting guides

OPERATIONAL DOCUMENTATION:
- Deployment guides for each environment (dev, staging, production)
- Infrastructure setup and configuration management
- Monitoring and alerting runbooks
- Incident response procedures and escalation paths
- Backup and disaster recovery procedures
- Performance tuning and optimization guidelines

DEVELOPER ONBOARDING:
- New developer setup checklist and environment configuration
- Codebase walkthrough and key concepts explanation
- Testing strategy and how to run tests locally
- Debugging guides and common development issues
- Code review checklist and quality standards
- Development tools and IDE setup recommendations

BUSINESS DOCUMENTATION:
- Business requirements and user stories documentation
- Domain model and business logic explanation
- User acceptance criteria and testing scenarios
- Stakeholder communication and reporting templates
- Project roadmap and milestone tracking`

var requirementBlocks = []struct {
	id   compliance.ID
	text string
}{
	{compliance.SOX, `SOX COMPLIANCE REQUIREMENTS:
- Implement immutable audit trails for all financial data modifications
- Segregation of duties with role-based access controls
- Automated control testing and monitoring
- Change management controls with approval workflows
- Data retention policies for financial records (7+ years)
- Internal controls documentation and testing procedures`},
	{compliance.HIPAA, `HIPAA COMPLIANCE REQUIREMENTS:
- Encrypt all PHI (Protected Health Information) at rest and in transit
- Implement access controls with minimum necessary principle
- Audit logging for all PHI access and modifications
- Business Associate Agreements (BAA) for third-party services
- Risk assessment and vulnerability management procedures
- Breach notification procedures and incident response plans
- Employee training and access termination procedures`},
	{compliance.PCI, `PCI DSS COMPLIANCE REQUIREMENTS:
- Never store sensitive authentication data (CVV, PIN)
- Encrypt cardholder data using AES-256 or equivalent
- Implement strong access control measures with unique IDs
- Regular security testing and vulnerability assessments
- Network segmentation to isolate cardholder data environment
- Secure coding practices and regular security updates
- File integrity monitoring and intrusion detection systems`},
	{compliance.GDPR, `GDPR COMPLIANCE REQUIREMENTS:
- Implement data subject rights (access, rectification, erasure, portability)
- Privacy by design and by default principles
- Data processing lawful basis documentation
- Data Protection Impact Assessments (DPIA) for high-risk processing
- Consent management with granular controls
- Data breach notification procedures (72-hour requirement)
- Data retention and deletion policies with automated enforcement`},
}
