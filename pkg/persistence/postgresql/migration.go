package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Directory
			CREATE TABLE tenants (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				code VARCHAR(50),
				type VARCHAR(100),
				group_ids TEXT[] NOT NULL DEFAULT '{}',
				is_active BOOLEAN NOT NULL DEFAULT true
			);

			CREATE TABLE users (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255),
				tenant_id VARCHAR(64),
				department_id VARCHAR(64),
				role_ids TEXT[] NOT NULL DEFAULT '{}',
				group_ids TEXT[] NOT NULL DEFAULT '{}',
				is_active BOOLEAN NOT NULL DEFAULT true
			);

			CREATE INDEX idx_users_tenant_id ON users(tenant_id);

			-- Categories and templates
			CREATE TABLE categories (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				code VARCHAR(50),
				description TEXT,
				icon_class VARCHAR(100),
				color VARCHAR(50),
				display_order INT NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				workflow_name VARCHAR(200) NOT NULL,
				description TEXT,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_by VARCHAR(64),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				modified_by VARCHAR(64),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE form_templates (
				id UUID PRIMARY KEY,
				category_id UUID NOT NULL REFERENCES categories(id),
				template_name VARCHAR(200) NOT NULL,
				template_code VARCHAR(50) NOT NULL UNIQUE,
				description TEXT,
				template_type VARCHAR(20) NOT NULL,
				version INT NOT NULL DEFAULT 1,
				is_active BOOLEAN NOT NULL DEFAULT true,
				requires_approval BOOLEAN NOT NULL DEFAULT true,
				workflow_id UUID REFERENCES workflows(id),
				publish_status VARCHAR(20) NOT NULL CHECK (publish_status IN ('Draft', 'Published', 'Archived', 'Deprecated')),
				published_date TIMESTAMP WITH TIME ZONE,
				published_by VARCHAR(64),
				archived_date TIMESTAMP WITH TIME ZONE,
				archived_by VARCHAR(64),
				archived_reason TEXT,
				submission_mode VARCHAR(20) NOT NULL DEFAULT 'Individual',
				allow_anonymous_access BOOLEAN NOT NULL DEFAULT false,
				sections JSONB NOT NULL DEFAULT '[]',
				created_by VARCHAR(64),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				modified_by VARCHAR(64),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_form_templates_category_id ON form_templates(category_id);
			CREATE INDEX idx_form_templates_publish_status ON form_templates(publish_status);
			CREATE INDEX idx_form_templates_workflow_id ON form_templates(workflow_id);

			CREATE TABLE option_templates (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				code VARCHAR(50) NOT NULL UNIQUE,
				category VARCHAR(100) NOT NULL,
				sub_category VARCHAR(100),
				description TEXT,
				usage_count INT NOT NULL DEFAULT 0,
				display_order INT NOT NULL DEFAULT 0,
				applicable_field_types TEXT[] NOT NULL DEFAULT '{}',
				recommended_for TEXT,
				has_scoring BOOLEAN NOT NULL DEFAULT false,
				scoring_type VARCHAR(50),
				is_system_template BOOLEAN NOT NULL DEFAULT false,
				tenant_id VARCHAR(64),
				is_active BOOLEAN NOT NULL DEFAULT true,
				items JSONB NOT NULL DEFAULT '[]',
				created_by VARCHAR(64),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				modified_by VARCHAR(64),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE assignments (
				id UUID PRIMARY KEY,
				template_id UUID NOT NULL REFERENCES form_templates(id) ON DELETE CASCADE,
				assignment_type VARCHAR(30) NOT NULL,
				tenant_type VARCHAR(100),
				tenant_group_id VARCHAR(64),
				tenant_id VARCHAR(64),
				role_id VARCHAR(64),
				department_id VARCHAR(64),
				user_group_id VARCHAR(64),
				user_id VARCHAR(64),
				effective_from TIMESTAMP WITH TIME ZONE NOT NULL,
				effective_until TIMESTAMP WITH TIME ZONE,
				allow_anonymous BOOLEAN NOT NULL DEFAULT false,
				status VARCHAR(20) NOT NULL CHECK (status IN ('Active', 'Suspended', 'Revoked')),
				cancelled_by VARCHAR(64),
				cancelled_date TIMESTAMP WITH TIME ZONE,
				cancelled_reason TEXT,
				assigned_by VARCHAR(64),
				assigned_date TIMESTAMP WITH TIME ZONE NOT NULL,
				notes TEXT
			);

			CREATE INDEX idx_assignments_template_id ON assignments(template_id);
			CREATE INDEX idx_assignments_status ON assignments(status);

			-- Workflows
			CREATE TABLE workflow_actions (
				id VARCHAR(64) PRIMARY KEY,
				action_code VARCHAR(50) NOT NULL UNIQUE,
				action_name VARCHAR(100) NOT NULL,
				description TEXT,
				requires_signature BOOLEAN NOT NULL DEFAULT false,
				requires_comment BOOLEAN NOT NULL DEFAULT false,
				allow_delegate BOOLEAN NOT NULL DEFAULT false,
				icon_class VARCHAR(100),
				css_class VARCHAR(100),
				display_order INT NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT true
			);

			CREATE TABLE workflow_steps (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				step_order INT NOT NULL,
				step_name VARCHAR(200) NOT NULL,
				action_id VARCHAR(64) NOT NULL REFERENCES workflow_actions(id),
				target_type VARCHAR(20),
				target_id VARCHAR(64),
				assignee_type VARCHAR(20) NOT NULL,
				approver_role_id VARCHAR(64),
				approver_user_id VARCHAR(64),
				assignee_department_id VARCHAR(64),
				assignee_field_id VARCHAR(64),
				is_mandatory BOOLEAN NOT NULL DEFAULT true,
				is_parallel BOOLEAN NOT NULL DEFAULT false,
				due_days INT NOT NULL DEFAULT 0,
				escalation_role_id VARCHAR(64),
				condition_logic TEXT,
				auto_approve_condition TEXT,
				depends_on_step_ids TEXT[] NOT NULL DEFAULT '{}'
			);

			CREATE INDEX idx_workflow_steps_workflow_id ON workflow_steps(workflow_id);

			-- Submission rules and submissions
			CREATE TABLE submission_rules (
				id UUID PRIMARY KEY,
				template_id UUID NOT NULL REFERENCES form_templates(id) ON DELETE CASCADE,
				rule_name VARCHAR(200) NOT NULL,
				description TEXT,
				frequency VARCHAR(20) NOT NULL,
				due_day INT,
				due_month INT,
				due_time VARCHAR(5),
				specific_due_date TIMESTAMP WITH TIME ZONE,
				cron_expression VARCHAR(100),
				grace_period_days INT NOT NULL DEFAULT 0,
				allow_late_submission BOOLEAN NOT NULL DEFAULT false,
				reminder_days_before VARCHAR(100),
				send_reminders BOOLEAN NOT NULL DEFAULT false,
				status VARCHAR(20) NOT NULL,
				created_by VARCHAR(64),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				modified_by VARCHAR(64),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_submission_rules_template_id ON submission_rules(template_id);

			CREATE TABLE submissions (
				id UUID PRIMARY KEY,
				template_id UUID NOT NULL REFERENCES form_templates(id),
				tenant_id VARCHAR(64),
				reporting_year INT NOT NULL DEFAULT 0,
				reporting_month INT NOT NULL DEFAULT 0,
				reporting_period TIMESTAMP WITH TIME ZONE,
				snapshot_date TIMESTAMP WITH TIME ZONE,
				status VARCHAR(20) NOT NULL,
				submitted_by VARCHAR(64),
				submitted_date TIMESTAMP WITH TIME ZONE,
				reviewed_by VARCHAR(64),
				reviewed_date TIMESTAMP WITH TIME ZONE,
				approval_comments TEXT,
				created_by VARCHAR(64),
				created_date TIMESTAMP WITH TIME ZONE NOT NULL,
				modified_by VARCHAR(64),
				modified_date TIMESTAMP WITH TIME ZONE,
				last_saved_date TIMESTAMP WITH TIME ZONE,
				current_section INT NOT NULL DEFAULT 0,
				responses JSONB NOT NULL DEFAULT '[]'
			);

			CREATE INDEX idx_submissions_template_id ON submissions(template_id);
			CREATE INDEX idx_submissions_tenant_id ON submissions(tenant_id);
			CREATE INDEX idx_submissions_status ON submissions(status);

			CREATE TABLE workflow_progress (
				id UUID PRIMARY KEY,
				submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
				step_id UUID NOT NULL,
				step_order INT NOT NULL,
				status VARCHAR(20) NOT NULL,
				action_id VARCHAR(64) NOT NULL,
				target_type VARCHAR(20),
				target_id VARCHAR(64),
				assigned_to VARCHAR(64),
				assigned_date TIMESTAMP WITH TIME ZONE,
				due_date TIMESTAMP WITH TIME ZONE,
				reviewed_by VARCHAR(64),
				reviewed_date TIMESTAMP WITH TIME ZONE,
				comments TEXT,
				signature_type VARCHAR(50),
				signature_data TEXT,
				signature_ip VARCHAR(64),
				signature_timestamp TIMESTAMP WITH TIME ZONE,
				delegated_to VARCHAR(64),
				delegated_by VARCHAR(64),
				delegated_date TIMESTAMP WITH TIME ZONE,
				delegation_reason TEXT,
				escalated_to VARCHAR(64),
				escalated_date TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_progress_submission_id ON workflow_progress(submission_id);
			CREATE INDEX idx_workflow_progress_step_id ON workflow_progress(step_id);
			CREATE INDEX idx_workflow_progress_status ON workflow_progress(status);
		`,
		2: `
			-- Seed the workflow action catalogue
			INSERT INTO workflow_actions (id, action_code, action_name, description, requires_signature, requires_comment, allow_delegate, icon_class, css_class, display_order, is_active)
			VALUES
				('action-fill', 'Fill', 'Fill', 'Fill in the assigned part of the form', false, false, true, 'ri-edit-line', 'primary', 1, true),
				('action-sign', 'Sign', 'Sign', 'Sign off the submission', true, false, false, 'ri-quill-pen-line', 'info', 2, true),
				('action-approve', 'Approve', 'Approve', 'Approve the submission', false, false, true, 'ri-checkbox-circle-line', 'success', 3, true),
				('action-reject', 'Reject', 'Reject', 'Reject the submission', false, true, false, 'ri-close-circle-line', 'danger', 4, true),
				('action-review', 'Review', 'Review', 'Review the submission', false, false, true, 'ri-eye-line', 'warning', 5, true),
				('action-verify', 'Verify', 'Verify', 'Verify the submitted data', false, false, true, 'ri-shield-check-line', 'secondary', 6, true)
			ON CONFLICT (id) DO NOTHING;
		`,
	}
}
